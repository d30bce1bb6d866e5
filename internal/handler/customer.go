package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/backoffice/internal/domain/customer"
)

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeCustomerRequest(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.customers.Create(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeID(e, id) })
}

// listCustomers lists every customer, or filters by ?q= (name or email
// substring) or ?email= (exact match).
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Has("email") {
		c, err := h.customers.FindByEmail(r.Context(), query.Get("email"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, *c) })
		return
	}

	var (
		customers []customer.Customer
		err       error
	)
	if query.Has("q") {
		customers, err = h.customers.Search(r.Context(), query.Get("q"))
	} else {
		customers, err = h.customers.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomers(e, customers) })
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.customers.Find(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, *c) })
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
