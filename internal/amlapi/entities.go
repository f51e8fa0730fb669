package amlapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.store.Customers(r.Context())
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, customers)
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, ok, err := a.store.Customer(r.Context(), id)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	if !ok {
		a.writeJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "customer not found"})
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, c)
}

func (a *API) handleCustomerAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.index.AlertsForCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, alerts)
}

func (a *API) handleCustomerTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := a.index.TransactionsForCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, txns)
}

// handleQueryTransactions filters the transaction collection with the
// stateless query engine. No parameters returns the full collection in
// original order.
func (a *API) handleQueryTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := investigation.Criteria{
		SearchTerm: q.Get("search"),
		StartDate:  q.Get("start"),
		EndDate:    q.Get("end"),
	}
	if raw := q.Get("type"); raw != "" {
		t := investigation.TransactionType(raw)
		if !t.Valid() {
			a.writeError(r.Context(), w,
				fmt.Errorf("query transactions: unknown type %q: %w", raw, investigation.ErrInvalidInput))
			return
		}
		criteria.Type = t
	}

	txns, err := a.store.Transactions(r.Context())
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, investigation.Query(txns, criteria))
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.store.Alerts(r.Context())
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, investigation.Summarize(alerts))
}
