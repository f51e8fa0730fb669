// Package screening checks free-text names against sanctions lists via an
// external AI service. The service returns structured JSON; anything the
// parser cannot trust degrades to a conservative no-match verdict, never a
// crash and never a propagated failure.
package screening

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

const systemPrompt = `You are a sanctions screening service for a bank's AML program.
You simulate checks against the OFAC (SDN), UN, and EU sanctions lists.
Respond with a single JSON object and nothing else, using this schema:
{
  "isMatch": boolean,
  "source": string (e.g. "OFAC", "None"),
  "confidence": number (0-100),
  "details": "Short description of the match or non-match"
}`

// Result is the structured screening verdict. Malformed collaborator output
// maps onto the zero verdict with an explanatory Details string.
type Result struct {
	RequestID  string    `json:"requestId"`
	Name       string    `json:"name"`
	IsMatch    bool      `json:"isMatch"`
	Source     string    `json:"source,omitempty"`
	Confidence int       `json:"confidence"`
	Details    string    `json:"details"`
	ScreenedAt time.Time `json:"screenedAt"`
}

// Provider is the interface for the LLM backend used for screening.
type Provider interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Screener runs name checks through the provider.
type Screener struct {
	provider Provider
	logger   log.Logger
	hooks    Hooks
	now      func() time.Time
}

// Hooks are optional observation points. The zero value is a no-op.
type Hooks struct {
	// OnScreen fires once per screening with the outcome
	// (match, clear, fallback).
	OnScreen func(outcome string)
}

func (h Hooks) onScreen(outcome string) {
	if h.OnScreen != nil {
		h.OnScreen(outcome)
	}
}

// New creates a Screener. provider may be nil, in which case every call
// returns the fallback verdict.
func New(provider Provider, logger log.Logger, hooks Hooks) *Screener {
	if logger == nil {
		logger = log.Nop()
	}
	return &Screener{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
		now:      time.Now,
	}
}

// Screen checks one name. A blank name is rejected with ErrInvalidInput;
// collaborator failures and unparseable output return a conservative
// no-match Result with the error message in Details, and a nil error.
func (s *Screener) Screen(ctx context.Context, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("screen: empty name: %w", investigation.ErrInvalidInput)
	}

	res := &Result{
		RequestID:  ulid.Make().String(),
		Name:       name,
		ScreenedAt: s.now(),
	}
	L := s.logger.With("request_id", res.RequestID)

	raw, err := s.generate(ctx, name)
	if err != nil {
		L.Error(ctx, err, "screening service call failed", "name", name)
		res.Details = fmt.Sprintf("screening service unavailable: %v", err)
		s.hooks.onScreen("fallback")
		return res, nil
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		L.Warn(ctx, "screening service returned unparseable verdict", "raw_len", len(raw))
		res.Details = "Error connecting to screening service."
		s.hooks.onScreen("fallback")
		return res, nil
	}

	res.IsMatch = verdict.IsMatch
	res.Source = verdict.Source
	res.Confidence = verdict.Confidence
	res.Details = verdict.Details

	outcome := "clear"
	if res.IsMatch {
		outcome = "match"
	}
	s.hooks.onScreen(outcome)
	L.Info(ctx, "screening complete", "name", name, "is_match", res.IsMatch, "source", res.Source)
	return res, nil
}

func (s *Screener) generate(ctx context.Context, name string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("no provider configured: %w", investigation.ErrCollaborator)
	}
	prompt := fmt.Sprintf("Screen the name: %q. Return only the JSON object.", name)
	raw, err := s.provider.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, investigation.ErrCollaborator)
	}
	return raw, nil
}

type verdict struct {
	IsMatch    bool
	Source     string
	Confidence int
	Details    string
}

// parseVerdict leniently extracts the verdict object from the model output.
// Markdown fences and surrounding prose are tolerated; a missing or invalid
// object is not.
func parseVerdict(raw string) (verdict, bool) {
	obj := extractObject(raw)
	if obj == "" || !gjson.Valid(obj) {
		return verdict{}, false
	}

	isMatch := gjson.Get(obj, "isMatch")
	if !isMatch.Exists() {
		return verdict{}, false
	}

	v := verdict{
		IsMatch: isMatch.Bool(),
		Source:  gjson.Get(obj, "source").String(),
		Details: gjson.Get(obj, "details").String(),
	}
	v.Confidence = clamp(int(gjson.Get(obj, "confidence").Int()), 0, 100)
	return v, true
}

// extractObject strips markdown fences and prose, returning the outermost
// JSON object in the text.
func extractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
