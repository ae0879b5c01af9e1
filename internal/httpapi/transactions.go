package httpapi

import (
	"net/http"

	"github.com/diego28e/backend-wealth-builder/internal/ledger"
)

type createTransactionRequest struct {
	ledger.CreateInput
	Date  flexTime           `json:"date"`
	Items []ledger.ItemInput `json:"items,omitempty"`
}

type updateTransactionRequest struct {
	ledger.Patch
	Date *flexTime `json:"date,omitempty"`
}

func (h *handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decode(w, r, &req) {
		return
	}
	in := req.CreateInput
	in.Date = *req.Date.ptr()

	if len(req.Items) == 0 {
		tx, err := h.Ledger.CreateTransaction(r.Context(), userID(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
		return
	}
	tx, err := h.Ledger.CreateTransactionWithItems(r.Context(), userID(r), in, req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Ledger.ListTransactions(r.Context(), userID(r), rng, ledger.Page{Page: page, Limit: limit})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.Ledger.GetTransactionWithItems(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateTransactionRequest
	if !decode(w, r, &req) {
		return
	}
	patch := req.Patch
	patch.Date = req.Date.ptr()

	tx, err := h.Ledger.UpdateTransaction(r.Context(), userID(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Ledger.DeleteTransaction(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
