package handlers

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

// Health — liveness-проба; никогда не лимитируется и не проверяется CSRF.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
