package httpapi

import "net/http"

func (h *handler) userBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.Summary.GetUserBalance(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handler) categoryGroupSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.Summary.GetCategoryGroupSummary(r.Context(), userID(r), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) accountActivity(w http.ResponseWriter, r *http.Request) {
	list, err := h.Summary.AccountActivity(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
