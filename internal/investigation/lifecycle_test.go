package investigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu        sync.Mutex
	alerts    map[string]*Alert
	customers map[string]*Customer
}

func newMockStore(alerts []Alert, customers []Customer) *mockStore {
	m := &mockStore{
		alerts:    make(map[string]*Alert),
		customers: make(map[string]*Customer),
	}
	for i := range alerts {
		a := alerts[i].Clone()
		m.alerts[a.ID] = &a
	}
	for i := range customers {
		c := customers[i]
		m.customers[c.ID] = &c
	}
	return m
}

func (m *mockStore) Customer(_ context.Context, id string) (*Customer, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

func (m *mockStore) Customers(context.Context) ([]Customer, error) { return nil, nil }

func (m *mockStore) Transaction(context.Context, string) (*Transaction, bool, error) {
	return nil, false, nil
}

func (m *mockStore) Transactions(context.Context) ([]Transaction, error) { return nil, nil }

func (m *mockStore) Alert(_ context.Context, id string) (*Alert, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, false, nil
	}
	cp := a.Clone()
	return &cp, true, nil
}

func (m *mockStore) Alerts(context.Context) ([]Alert, error) { return nil, nil }

func (m *mockStore) ReplaceAlert(_ context.Context, a *Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[a.ID]; !ok {
		return fmt.Errorf("replace alert %s: %w", a.ID, ErrNotFound)
	}
	cp := a.Clone()
	m.alerts[a.ID] = &cp
	return nil
}

// mockIndex returns preconfigured correlation results.
type mockIndex struct {
	txns map[string][]Transaction
	err  error
}

func (m *mockIndex) TransactionsForAlert(_ context.Context, alertID string) ([]Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.txns[alertID], nil
}

func (m *mockIndex) AlertsForCustomer(context.Context, string) ([]Alert, error) { return nil, nil }

func (m *mockIndex) TransactionsForCustomer(context.Context, string) ([]Transaction, error) {
	return nil, nil
}

// mockProvider returns a preconfigured generation result.
type mockProvider struct {
	text string
	err  error
}

func (m *mockProvider) Generate(context.Context, string, string) (string, error) {
	return m.text, m.err
}

func testService(t *testing.T, provider Provider) (*Service, *mockStore) {
	t.Helper()
	store := newMockStore(sampleAlerts(), []Customer{
		{ID: "CUST-001", Name: "Global Import/Export Ltd", Type: CustomerEntity, RiskLevel: RiskHigh, Occupation: "Logistics", Country: "Panama"},
		{ID: "CUST-004", Name: "Rapid Cash Services", Type: CustomerEntity, RiskLevel: RiskCritical, Occupation: "Money Service Business", Country: "Mexico"},
	})
	idx := &mockIndex{txns: map[string][]Transaction{
		"ALT-2024-001": sampleTransactions()[:3],
		"ALT-2024-002": sampleTransactions()[4:],
	}}
	return NewService(store, idx, provider, log.Nop(), ServiceHooks{}, nil), store
}

func TestAppendNote_IncreasesLengthByOne(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	before, _, _ := svc.store.Alert(ctx, "ALT-2024-001")

	got, err := svc.AppendNote(ctx, "ALT-2024-001", "Confirmed with branch manager.")
	if err != nil {
		t.Fatalf("AppendNote: %v", err)
	}
	if len(got.AnalystNotes) != len(before.AnalystNotes)+1 {
		t.Fatalf("notes = %d, want %d", len(got.AnalystNotes), len(before.AnalystNotes)+1)
	}
	last := got.AnalystNotes[len(got.AnalystNotes)-1]
	if last != "[09:30:00] Confirmed with branch manager." {
		t.Errorf("last note = %q", last)
	}
	if got.Status != StatusInProgress {
		t.Errorf("status = %q, want unchanged %q", got.Status, StatusInProgress)
	}
}

func TestAppendNote_NoDedup(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)
	ctx := context.Background()

	if _, err := svc.AppendNote(ctx, "ALT-2024-002", "same text"); err != nil {
		t.Fatalf("first append: %v", err)
	}
	got, err := svc.AppendNote(ctx, "ALT-2024-002", "same text")
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if len(got.AnalystNotes) != 2 {
		t.Errorf("notes = %d, want 2 distinct entries", len(got.AnalystNotes))
	}
}

func TestAppendNote_WhitespaceOnlyRejected(t *testing.T) {
	t.Parallel()

	svc, store := testService(t, nil)
	ctx := context.Background()

	_, err := svc.AppendNote(ctx, "ALT-2024-001", "  ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	a, _, _ := store.Alert(ctx, "ALT-2024-001")
	if len(a.AnalystNotes) != 1 {
		t.Errorf("notes = %d, want unchanged 1", len(a.AnalystNotes))
	}
}

func TestAppendNote_UnknownAlert(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)
	_, err := svc.AppendNote(context.Background(), "ALT-9999-404", "note")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendSystemNote_Marker(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)

	got, err := svc.AppendSystemNote(context.Background(), "ALT-2024-002", "Narrative body.")
	if err != nil {
		t.Fatalf("AppendSystemNote: %v", err)
	}
	last := got.AnalystNotes[len(got.AnalystNotes)-1]
	if !IsSystemNote(last) {
		t.Errorf("expected system marker on %q", last)
	}
	if !strings.HasSuffix(last, "Narrative body.") {
		t.Errorf("expected report text preserved, got %q", last)
	}
	if got.Status != StatusNew {
		t.Errorf("status = %q, want unchanged %q", got.Status, StatusNew)
	}
}

func TestIsSystemNote(t *testing.T) {
	t.Parallel()

	if IsSystemNote("[09:30:00] analyst text") {
		t.Error("analyst note misclassified as system")
	}
	if !IsSystemNote(systemNoteMarker + "\nreport") {
		t.Error("system note not recognized")
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    AlertStatus
		to      AlertStatus
		wantErr error
	}{
		{"new to in progress", StatusNew, StatusInProgress, nil},
		{"new to false positive", StatusNew, StatusFalsePositive, nil},
		{"new to escalated", StatusNew, StatusEscalatedSAR, nil},
		{"new to closed", StatusNew, StatusClosed, nil},
		{"in progress to escalated", StatusInProgress, StatusEscalatedSAR, nil},
		{"in progress to false positive", StatusInProgress, StatusFalsePositive, nil},
		{"terminal to closed", StatusEscalatedSAR, StatusClosed, nil},
		{"reopen closed", StatusClosed, StatusInProgress, nil},
		{"reopen false positive", StatusFalsePositive, StatusInProgress, nil},
		{"closed to escalated rejected", StatusClosed, StatusEscalatedSAR, ErrInvalidTransition},
		{"false positive to escalated rejected", StatusFalsePositive, StatusEscalatedSAR, ErrInvalidTransition},
		{"back to new rejected", StatusInProgress, StatusNew, ErrInvalidTransition},
		{"closed to new rejected", StatusClosed, StatusNew, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			alerts := sampleAlerts()
			alerts[0].Status = tt.from
			store := newMockStore(alerts, nil)
			svc := NewService(store, &mockIndex{}, nil, log.Nop(), ServiceHooks{}, nil)

			got, err := svc.SetStatus(context.Background(), "ALT-2024-001", tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				a, _, _ := store.Alert(context.Background(), "ALT-2024-001")
				if a.Status != tt.from {
					t.Errorf("status = %q, want unchanged %q", a.Status, tt.from)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetStatus: %v", err)
			}
			if got.Status != tt.to {
				t.Errorf("status = %q, want %q", got.Status, tt.to)
			}
		})
	}
}

func TestSetStatus_SameStatusIsNoop(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)
	got, err := svc.SetStatus(context.Background(), "ALT-2024-001", StatusInProgress)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, StatusInProgress)
	}
}

func TestSetStatus_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)
	_, err := svc.SetStatus(context.Background(), "ALT-2024-001", AlertStatus("Archived"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSetStatus_DoesNotTouchNotes(t *testing.T) {
	t.Parallel()

	svc, store := testService(t, nil)
	ctx := context.Background()

	before, _, _ := store.Alert(ctx, "ALT-2024-001")
	got, err := svc.SetStatus(ctx, "ALT-2024-001", StatusEscalatedSAR)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if len(got.AnalystNotes) != len(before.AnalystNotes) {
		t.Errorf("notes = %d, want unchanged %d", len(got.AnalystNotes), len(before.AnalystNotes))
	}
}

func TestSetStatus_UnknownAlert(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, nil)
	_, err := svc.SetStatus(context.Background(), "ALT-9999-404", StatusClosed)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetStatus_EscalationNotifies(t *testing.T) {
	t.Parallel()

	notified := make(chan string, 1)
	store := newMockStore(sampleAlerts(), nil)
	svc := NewService(store, &mockIndex{}, nil, log.Nop(), ServiceHooks{}, notifierFunc(func(_ context.Context, a *Alert) error {
		notified <- a.ID
		return nil
	}))

	if _, err := svc.SetStatus(context.Background(), "ALT-2024-002", StatusEscalatedSAR); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	select {
	case id := <-notified:
		if id != "ALT-2024-002" {
			t.Errorf("notified alert = %q, want ALT-2024-002", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected escalation notification")
	}
}

type notifierFunc func(ctx context.Context, a *Alert) error

func (f notifierFunc) Send(ctx context.Context, a *Alert) error { return f(ctx, a) }

func TestNarrative_AppendsSystemNote(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{text: "SAR narrative: structured wires below threshold."}
	svc, store := testService(t, provider)
	ctx := context.Background()

	report, err := svc.generateNarrative(ctx, "ALT-2024-001")
	if err != nil {
		t.Fatalf("generateNarrative: %v", err)
	}
	if report != provider.text {
		t.Errorf("report = %q, want provider text", report)
	}

	if _, err := svc.AppendSystemNote(ctx, "ALT-2024-001", report); err != nil {
		t.Fatalf("AppendSystemNote: %v", err)
	}
	a, _, _ := store.Alert(ctx, "ALT-2024-001")
	last := a.AnalystNotes[len(a.AnalystNotes)-1]
	if !IsSystemNote(last) {
		t.Errorf("expected system note, got %q", last)
	}
}

func TestNarrative_ProviderFailureDegradesToFallback(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{err: errors.New("upstream 500")}
	svc, store := testService(t, provider)

	svc.runNarrative(context.Background(), "ALT-2024-001")

	a, _, _ := store.Alert(context.Background(), "ALT-2024-001")
	last := a.AnalystNotes[len(a.AnalystNotes)-1]
	if !IsSystemNote(last) {
		t.Fatalf("expected fallback system note, got %q", last)
	}
	if !strings.Contains(last, narrativeFallback) {
		t.Errorf("expected fallback text, got %q", last)
	}
}

func TestNarrative_NoProviderDegradesToFallback(t *testing.T) {
	t.Parallel()

	svc, store := testService(t, nil)
	svc.runNarrative(context.Background(), "ALT-2024-002")

	a, _, _ := store.Alert(context.Background(), "ALT-2024-002")
	if len(a.AnalystNotes) != 1 {
		t.Fatalf("notes = %d, want 1 fallback entry", len(a.AnalystNotes))
	}
	if !strings.Contains(a.AnalystNotes[0], narrativeFallback) {
		t.Errorf("expected fallback text, got %q", a.AnalystNotes[0])
	}
}

func TestSubmitNarrative_UnknownAlert(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, &mockProvider{text: "x"})
	err := svc.SubmitNarrative(context.Background(), "ALT-9999-404")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNarrative_CustomerMissingIsIntegrityError(t *testing.T) {
	t.Parallel()

	store := newMockStore(sampleAlerts(), nil) // no customers loaded
	svc := NewService(store, &mockIndex{}, &mockProvider{text: "x"}, log.Nop(), ServiceHooks{}, nil)

	_, err := svc.generateNarrative(context.Background(), "ALT-2024-001")
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("err = %v, want ErrDataIntegrity", err)
	}
}

func TestService_PerAlertMutationsSerialized(t *testing.T) {
	t.Parallel()

	svc, store := testService(t, nil)
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			_, _ = svc.AppendNote(ctx, "ALT-2024-002", fmt.Sprintf("note %d", i))
		}()
	}
	wg.Wait()

	a, _, _ := store.Alert(ctx, "ALT-2024-002")
	if len(a.AnalystNotes) != n {
		t.Errorf("notes = %d, want %d (no lost updates)", len(a.AnalystNotes), n)
	}
}

func TestServiceHooks_Outcomes(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	outcomes := map[string]int{}
	hooks := ServiceHooks{OnMutation: func(op, outcome string) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[op+"/"+outcome]++
	}}

	store := newMockStore(sampleAlerts(), nil)
	svc := NewService(store, &mockIndex{}, nil, log.Nop(), hooks, nil)
	ctx := context.Background()

	_, _ = svc.AppendNote(ctx, "ALT-2024-001", "ok note")
	_, _ = svc.AppendNote(ctx, "ALT-2024-001", "   ")
	_, _ = svc.SetStatus(ctx, "ALT-2024-001", StatusInProgress) // already in progress
	_, _ = svc.SetStatus(ctx, "nope", StatusClosed)

	mu.Lock()
	defer mu.Unlock()
	if outcomes["append_note/ok"] != 1 {
		t.Errorf("append_note/ok = %d, want 1", outcomes["append_note/ok"])
	}
	if outcomes["append_note/invalid_input"] != 1 {
		t.Errorf("append_note/invalid_input = %d, want 1", outcomes["append_note/invalid_input"])
	}
	if outcomes["set_status/noop"] != 1 {
		t.Errorf("set_status/noop = %d, want 1", outcomes["set_status/noop"])
	}
	if outcomes["set_status/not_found"] != 1 {
		t.Errorf("set_status/not_found = %d, want 1", outcomes["set_status/not_found"])
	}
}
