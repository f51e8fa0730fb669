package amlapi

import (
	"encoding/json"
	"net/http"
)

func (a *API) handleScreening(w http.ResponseWriter, r *http.Request) {
	if a.screener == nil {
		a.writeJSON(r.Context(), w, http.StatusServiceUnavailable,
			map[string]string{"error": "screening not configured"})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	result, err := a.screener.Screen(r.Context(), req.Name)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(r.Context(), w, http.StatusOK, result)
}
