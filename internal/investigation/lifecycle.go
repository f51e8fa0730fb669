package investigation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// systemNoteMarker prefixes system-authored note entries so consumers can
// tell them apart from analyst notes in the same timeline.
const systemNoteMarker = "--- AI GENERATED REPORT ---"

// narrativeFallback is appended when the narrative collaborator fails; the
// workflow continues, the failure is never propagated.
const narrativeFallback = "Error generating AI report. Please check API configuration."

// Service is the alert lifecycle manager: the only component that mutates an
// alert. Mutations on the same alert id are serialized by a keyed mutex;
// different alerts proceed in parallel. Status and notes are separate
// mutation operations, never bundled.
type Service struct {
	store    Store
	index    Index
	provider Provider
	notifier Notifier
	logger   log.Logger
	hooks    ServiceHooks
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the lifecycle manager. provider and notifier may be nil;
// the corresponding enrichments degrade to fallbacks.
func NewService(store Store, index Index, provider Provider, logger log.Logger, hooks ServiceHooks, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		index:    index,
		provider: provider,
		notifier: notifier,
		logger:   logger,
		hooks:    hooks,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// alertLock returns the mutex serializing mutations for one alert id.
func (s *Service) alertLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// AppendNote appends "[HH:MM:SS] text" to the alert's note timeline and
// returns the updated alert. Whitespace-only text is rejected with
// ErrInvalidInput before any mutation. Identical texts append distinct
// entries; the timeline is never deduplicated, reordered, or truncated.
// Status is untouched.
func (s *Service) AppendNote(ctx context.Context, alertID, text string) (*Alert, error) {
	if strings.TrimSpace(text) == "" {
		s.hooks.onMutation("append_note", "invalid_input")
		return nil, fmt.Errorf("append note to %s: empty text: %w", alertID, ErrInvalidInput)
	}
	entry := fmt.Sprintf("[%s] %s", s.now().Format("15:04:05"), text)
	return s.append(ctx, "append_note", alertID, entry)
}

// AppendSystemNote appends a system-origin entry carrying a collaborator
// result, wrapped with the system marker. Status is untouched.
func (s *Service) AppendSystemNote(ctx context.Context, alertID, reportText string) (*Alert, error) {
	entry := systemNoteMarker + "\n" + reportText
	return s.append(ctx, "append_system_note", alertID, entry)
}

// IsSystemNote reports whether a note entry was authored by a collaborator
// rather than an analyst.
func IsSystemNote(note string) bool {
	return strings.HasPrefix(note, systemNoteMarker)
}

func (s *Service) append(ctx context.Context, op, alertID, entry string) (*Alert, error) {
	l := s.alertLock(alertID)
	l.Lock()
	defer l.Unlock()

	a, ok, err := s.store.Alert(ctx, alertID)
	if err != nil {
		s.hooks.onMutation(op, "error")
		return nil, fmt.Errorf("%s %s: %w", op, alertID, err)
	}
	if !ok {
		s.hooks.onMutation(op, "not_found")
		return nil, fmt.Errorf("%s %s: %w", op, alertID, ErrNotFound)
	}

	a.AnalystNotes = append(a.AnalystNotes, entry)
	if err := s.store.ReplaceAlert(ctx, a); err != nil {
		s.hooks.onMutation(op, "error")
		return nil, fmt.Errorf("%s %s: %w", op, alertID, err)
	}

	s.hooks.onMutation(op, "ok")
	return a, nil
}

// SetStatus replaces the alert's status and returns the updated alert. Notes
// are untouched. Transitions follow the lifecycle state machine; an illegal
// transition is rejected with ErrInvalidTransition and the original state is
// unchanged. Setting the current status again is an idempotent no-op.
func (s *Service) SetStatus(ctx context.Context, alertID string, status AlertStatus) (*Alert, error) {
	if !status.Valid() {
		s.hooks.onMutation("set_status", "invalid_input")
		return nil, fmt.Errorf("set status of %s: unknown status %q: %w", alertID, status, ErrInvalidInput)
	}

	l := s.alertLock(alertID)
	l.Lock()
	defer l.Unlock()

	a, ok, err := s.store.Alert(ctx, alertID)
	if err != nil {
		s.hooks.onMutation("set_status", "error")
		return nil, fmt.Errorf("set status of %s: %w", alertID, err)
	}
	if !ok {
		s.hooks.onMutation("set_status", "not_found")
		return nil, fmt.Errorf("set status of %s: %w", alertID, ErrNotFound)
	}

	if a.Status == status {
		s.hooks.onMutation("set_status", "noop")
		return a, nil
	}
	if !allowedTransition(a.Status, status) {
		s.hooks.onMutation("set_status", "invalid_transition")
		return nil, fmt.Errorf("set status of %s: %s -> %s: %w", alertID, a.Status, status, ErrInvalidTransition)
	}

	from := a.Status
	a.Status = status
	if err := s.store.ReplaceAlert(ctx, a); err != nil {
		s.hooks.onMutation("set_status", "error")
		return nil, fmt.Errorf("set status of %s: %w", alertID, err)
	}

	s.hooks.onMutation("set_status", "ok")
	s.hooks.onTransition(from, status)
	s.logger.Info(ctx, "alert status changed", "alert_id", alertID, "from", from, "to", status)

	if status == StatusEscalatedSAR && s.notifier != nil {
		// best-effort, off the mutation path
		go s.notify(context.WithoutCancel(ctx), a.Clone())
	}

	return a, nil
}

func (s *Service) notify(ctx context.Context, a Alert) {
	if err := s.notifier.Send(ctx, &a); err != nil {
		s.logger.Error(ctx, err, "escalation notification failed", "alert_id", a.ID)
	}
}

// allowedTransition encodes the lifecycle state machine. Re-opening a
// terminal alert to In Progress is permitted; every path back to New is not.
func allowedTransition(from, to AlertStatus) bool {
	switch to {
	case StatusClosed:
		return true
	case StatusInProgress:
		return true
	case StatusFalsePositive, StatusEscalatedSAR:
		return !from.Terminal()
	default: // StatusNew is assigned at creation only
		return false
	}
}

// SubmitNarrative validates the alert exists, then generates and appends an
// investigation narrative asynchronously. The long-latency provider call
// holds no lock: context is read first, the note append happens after the
// call returns and re-validates that the alert still exists.
func (s *Service) SubmitNarrative(ctx context.Context, alertID string) error {
	_, ok, err := s.store.Alert(ctx, alertID)
	if err != nil {
		return fmt.Errorf("submit narrative for %s: %w", alertID, err)
	}
	if !ok {
		return fmt.Errorf("submit narrative for %s: %w", alertID, ErrNotFound)
	}

	go s.runNarrative(context.WithoutCancel(ctx), alertID)
	return nil
}

func (s *Service) runNarrative(ctx context.Context, alertID string) {
	L := s.logger.With("alert_id", alertID)
	start := s.now()

	report, err := s.generateNarrative(ctx, alertID)
	outcome := "ok"
	if err != nil {
		// collaborator failures degrade to a user-visible fallback note
		L.Error(ctx, err, "narrative generation failed, appending fallback")
		report = narrativeFallback
		outcome = "fallback"
	}

	if _, err := s.AppendSystemNote(ctx, alertID, report); err != nil {
		// the alert may have been removed while the call was in flight
		L.Error(ctx, err, "narrative append failed")
		outcome = "lost"
	}

	s.hooks.onNarrative(outcome, s.now().Sub(start).Seconds())
	L.Info(ctx, "narrative complete", "outcome", outcome)
}

func (s *Service) generateNarrative(ctx context.Context, alertID string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("narrative for %s: no provider configured: %w", alertID, ErrCollaborator)
	}

	a, ok, err := s.store.Alert(ctx, alertID)
	if err != nil {
		return "", fmt.Errorf("narrative for %s: %w", alertID, err)
	}
	if !ok {
		return "", fmt.Errorf("narrative for %s: %w", alertID, ErrNotFound)
	}

	c, ok, err := s.store.Customer(ctx, a.CustomerID)
	if err != nil {
		return "", fmt.Errorf("narrative for %s: %w", alertID, err)
	}
	if !ok {
		return "", fmt.Errorf("narrative for %s: customer %s: %w", alertID, a.CustomerID, ErrDataIntegrity)
	}

	txns, err := s.index.TransactionsForAlert(ctx, alertID)
	if err != nil {
		return "", fmt.Errorf("narrative for %s: %w", alertID, err)
	}

	report, err := s.provider.Generate(ctx, narrativeSystemPrompt, buildNarrativePrompt(a, c, txns))
	if err != nil {
		return "", fmt.Errorf("narrative for %s: %v: %w", alertID, err, ErrCollaborator)
	}
	if strings.TrimSpace(report) == "" {
		return "", fmt.Errorf("narrative for %s: empty response: %w", alertID, ErrCollaborator)
	}
	return report, nil
}
