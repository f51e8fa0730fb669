// Package amlapi exposes the investigation core over HTTP: read-only
// accessors for the correlation index, query engine, and dashboard rollups,
// plus the alert write boundary (notes, status, narrative) and sanctions
// screening.
package amlapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/risklens/internal/investigation"
	"github.com/linnemanlabs/risklens/internal/screening"
)

// LifecycleService defines the write operations amlapi needs from the alert
// lifecycle manager.
type LifecycleService interface {
	AppendNote(ctx context.Context, alertID, text string) (*investigation.Alert, error)
	SetStatus(ctx context.Context, alertID string, status investigation.AlertStatus) (*investigation.Alert, error)
	SubmitNarrative(ctx context.Context, alertID string) error
}

// Screener defines the sanctions screening operation amlapi needs.
type Screener interface {
	Screen(ctx context.Context, name string) (*screening.Result, error)
}

// Options holds the API's collaborators. Service, Store, and Index are
// required; Screener and WriteAuth are optional.
type Options struct {
	Service  LifecycleService
	Store    investigation.Store
	Index    investigation.Index
	Screener Screener

	// WriteAuth, when set, wraps the mutating routes.
	WriteAuth func(http.Handler) http.Handler
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger   log.Logger
	svc      LifecycleService
	store    investigation.Store
	index    investigation.Index
	screener Screener

	writeAuth func(http.Handler) http.Handler
}

// New creates a new API handler.
func New(logger log.Logger, opts Options) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.Service == nil {
		panic(xerrors.New("lifecycle service is required"))
	}
	if opts.Store == nil {
		panic(xerrors.New("entity store is required"))
	}
	if opts.Index == nil {
		panic(xerrors.New("correlation index is required"))
	}
	return &API{
		logger:    logger,
		svc:       opts.Service,
		store:     opts.Store,
		index:     opts.Index,
		screener:  opts.Screener,
		writeAuth: opts.WriteAuth,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/alerts", a.handleListAlerts)
		r.Get("/alerts/{id}", a.handleGetAlert)
		r.Get("/alerts/{id}/transactions", a.handleAlertTransactions)
		r.Get("/customers", a.handleListCustomers)
		r.Get("/customers/{id}", a.handleGetCustomer)
		r.Get("/customers/{id}/alerts", a.handleCustomerAlerts)
		r.Get("/customers/{id}/transactions", a.handleCustomerTransactions)
		r.Get("/transactions", a.handleQueryTransactions)
		r.Get("/dashboard", a.handleDashboard)

		r.Group(func(r chi.Router) {
			if a.writeAuth != nil {
				r.Use(a.writeAuth)
			}
			r.Post("/alerts/{id}/notes", a.handleAppendNote)
			r.Put("/alerts/{id}/status", a.handleSetStatus)
			r.Post("/alerts/{id}/narrative", a.handleNarrative)
			r.Post("/screening", a.handleScreening)
		})
	})
}

func (a *API) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error(ctx, err, "encode response")
	}
}

func (a *API) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, investigation.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, investigation.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, investigation.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, investigation.ErrDataIntegrity):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		a.logger.Error(ctx, err, "request failed")
		a.writeJSON(ctx, w, status, map[string]string{"error": "internal error"})
		return
	}
	a.writeJSON(ctx, w, status, map[string]string{"error": err.Error()})
}
