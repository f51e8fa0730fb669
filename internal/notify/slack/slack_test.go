package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

func escalatedAlert() *investigation.Alert {
	return &investigation.Alert{
		ID:                    "ALT-2024-002",
		CustomerID:            "CUST-004",
		CustomerName:          "Rapid Cash Services",
		TriggerDate:           "2024-05-12",
		RuleName:              "High Velocity / Crypto Burst",
		Severity:              investigation.RiskCritical,
		Status:                investigation.StatusEscalatedSAR,
		RelatedTransactionIDs: []string{"TXN-9001", "TXN-9002"},
	}
}

func TestSend(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Send(context.Background(), escalatedAlert()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var msg struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(msg.Blocks) == 0 {
		t.Fatal("payload has no blocks")
	}

	payload := string(gotBody)
	for _, want := range []string{
		"SAR Filed: High Velocity / Crypto Burst",
		"ALT-2024-002",
		"Rapid Cash Services (CUST-004)",
		"Critical",
		"2024-05-12",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestSend_EmptyWebhookIsNoop(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Send(context.Background(), escalatedAlert()); err != nil {
		t.Fatalf("Send with empty webhook: %v", err)
	}
}

func TestSend_Non2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL).Send(context.Background(), escalatedAlert())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("err = %v, want status code in message", err)
	}
}

func TestSend_UnreachableWebhook(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	if err := New(srv.URL).Send(context.Background(), escalatedAlert()); err == nil {
		t.Fatal("expected error for unreachable webhook")
	}
}

func TestSend_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := New(srv.URL).Send(ctx, escalatedAlert()); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
