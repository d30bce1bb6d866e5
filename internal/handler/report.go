package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

func (h *Handler) salesByCustomer(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.SalesByCustomer(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSales(e, rows) })
}
