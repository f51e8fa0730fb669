// Package slack posts SAR escalation notices to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

const httpTimeout = 10 * time.Second

// Notifier sends escalated alerts to a Slack webhook. It satisfies
// investigation.Notifier.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts an escalation notice for the alert to the configured webhook.
func (n *Notifier) Send(ctx context.Context, a *investigation.Alert) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(a))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(a *investigation.Alert) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf(":rotating_light: SAR Filed: %s", a.RuleName),
				},
			},
			{"type": "divider"},
			{
				"type": "section",
				"fields": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Alert:* %s", a.ID)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Severity:* %s", a.Severity)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Customer:* %s (%s)", a.CustomerName, a.CustomerID)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Triggered:* %s", a.TriggerDate)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Transactions:* %d", len(a.RelatedTransactionIDs))},
				},
			},
		},
	}
}
