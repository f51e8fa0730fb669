package investigation

import (
	"fmt"
	"strings"
)

const narrativeSystemPrompt = `You are a Senior AML Investigator at a major bank.
Generate concise, professional "Suspicious Activity Report (SAR)" narratives
from the case data you are given. Keep them formal and regulatory-ready.`

// buildNarrativePrompt assembles the case context for the narrative
// generator: alert trigger, customer profile, and the related transactions.
func buildNarrativePrompt(a *Alert, c *Customer, txns []Transaction) string {
	var lines strings.Builder
	for _, t := range txns {
		fmt.Fprintf(&lines, "- %s: %s %s via %s to/from %s (%s)\n",
			t.Date, t.Amount.String(), t.Currency, t.Type, t.MerchantOrCounterparty, t.CounterpartyCountry)
	}

	return fmt.Sprintf(`Alert Context:
- Rule Triggered: %s
- Severity: %s
- Date: %s

Customer Profile:
- Name: %s
- Risk Rating: %s
- Occupation/Type: %s (%s)
- Domicile: %s

Suspicious Transactions:
%s
Instructions:
1. Summarize the suspicious activity.
2. Explain why this fits the typology of %s (e.g. structuring, smurfing, velocity).
3. Recommend a conclusion (File SAR or Further Investigation).
4. Keep it formal and regulatory-ready.`,
		a.RuleName, a.Severity, a.TriggerDate,
		c.Name, c.RiskLevel, c.Occupation, c.Type, c.Country,
		lines.String(), a.RuleName)
}
