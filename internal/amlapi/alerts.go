package amlapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

func (a *API) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.store.Alerts(r.Context())
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, alerts)
}

func (a *API) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotateAlertSpan(r, id)

	alert, ok, err := a.store.Alert(r.Context(), id)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	if !ok {
		a.writeJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "alert not found"})
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, alert)
}

func (a *API) handleAlertTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotateAlertSpan(r, id)

	txns, err := a.index.TransactionsForAlert(r.Context(), id)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, txns)
}

func (a *API) handleAppendNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotateAlertSpan(r, id)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	alert, err := a.svc.AppendNote(r.Context(), id, req.Text)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, alert)
}

func (a *API) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotateAlertSpan(r, id)

	var req struct {
		Status investigation.AlertStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	alert, err := a.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("risklens.alert.status", string(alert.Status)))

	a.writeJSON(r.Context(), w, http.StatusOK, alert)
}

func (a *API) handleNarrative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotateAlertSpan(r, id)

	if err := a.svc.SubmitNarrative(r.Context(), id); err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusAccepted, map[string]string{"alertId": id, "status": "generating"})
}

func annotateAlertSpan(r *http.Request, id string) {
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("risklens.alert.id", id))
}
