package investigation

import "strings"

// endOfDay extends a date-only upper bound so it captures every time within
// that day under lexicographic comparison.
const endOfDay = " 23:59"

// Criteria filters a transaction collection. Zero-value fields match
// everything, so the zero Criteria is the identity filter.
type Criteria struct {
	// SearchTerm matches case-insensitively as a substring of the
	// transaction id, the counterparty name, or the decimal string form of
	// the amount. Any one hit qualifies.
	SearchTerm string

	// Type restricts to one transaction type; empty matches all.
	Type TransactionType

	// StartDate is an inclusive lower bound ("YYYY-MM-DD" or full
	// timestamp), compared lexicographically against Transaction.Date.
	StartDate string

	// EndDate is an inclusive upper bound. A date-only value covers the
	// whole day.
	EndDate string
}

// Query returns the subset of transactions matching every set criterion,
// preserving the input's relative order. The input slice is never modified.
func Query(transactions []Transaction, c Criteria) []Transaction {
	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))

	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if term != "" && !matchesTerm(&t, term) {
			continue
		}
		if c.Type != "" && t.Type != c.Type {
			continue
		}
		if c.StartDate != "" && t.Date < c.StartDate {
			continue
		}
		if c.EndDate != "" && t.Date > c.EndDate+endOfDay {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesTerm(t *Transaction, term string) bool {
	return strings.Contains(strings.ToLower(t.ID), term) ||
		strings.Contains(strings.ToLower(t.MerchantOrCounterparty), term) ||
		strings.Contains(t.Amount.String(), term)
}
