package http

import (
	"net/http"
	"strings"
)

type downloadRequest struct {
	OrderID       string `json:"orderId"`
	CustomerEmail string `json:"customerEmail"`
}

// GetDownloads serves the re-entrant download page payload: ownership is
// order id plus purchase email, links are short-lived signed URLs.
func (h *Handlers) GetDownloads(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[downloadRequest](w, r)
	if !ok {
		return
	}
	if req.OrderID == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		writeError(w, http.StatusBadRequest, "orderId and customerEmail are required")
		return
	}

	result, err := h.download.Get(r.Context(), req.OrderID, req.CustomerEmail)
	if err != nil {
		writeDomainError(w, err, "order not found")
		return
	}
	if h.metrics != nil {
		h.metrics.Downloads.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, result)
}
