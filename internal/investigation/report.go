package investigation

// Summary is the dashboard rollup over an alert collection. The three status
// buckets partition the collection, so Open + Escalated + Closed == Total.
type Summary struct {
	Total     int `json:"total"`
	Open      int `json:"open"`      // New + In Progress
	Escalated int `json:"escalated"` // Escalated (SAR Filed)
	Closed    int `json:"closed"`    // Closed + False Positive

	Severity []SeverityCount `json:"severity"`
	Rules    []RuleCount     `json:"rules"`
}

// SeverityCount is one bucket of the severity histogram.
type SeverityCount struct {
	Level RiskLevel `json:"level"`
	Count int       `json:"count"`
}

// RuleCount is one bucket of the rule-name histogram.
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Summarize computes the dashboard rollups. The severity histogram is
// zero-filled in the fixed RiskLevels order; rule buckets appear in
// first-occurrence order.
func Summarize(alerts []Alert) Summary {
	s := Summary{Total: len(alerts)}

	bySeverity := make(map[RiskLevel]int, len(RiskLevels))
	ruleIdx := make(map[string]int)

	for _, a := range alerts {
		switch a.Status {
		case StatusNew, StatusInProgress:
			s.Open++
		case StatusEscalatedSAR:
			s.Escalated++
		case StatusClosed, StatusFalsePositive:
			s.Closed++
		}

		bySeverity[a.Severity]++

		if i, ok := ruleIdx[a.RuleName]; ok {
			s.Rules[i].Count++
		} else {
			ruleIdx[a.RuleName] = len(s.Rules)
			s.Rules = append(s.Rules, RuleCount{Rule: a.RuleName, Count: 1})
		}
	}

	s.Severity = make([]SeverityCount, 0, len(RiskLevels))
	for _, lvl := range RiskLevels {
		s.Severity = append(s.Severity, SeverityCount{Level: lvl, Count: bySeverity[lvl]})
	}

	return s
}
