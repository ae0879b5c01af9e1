package httpapi

import (
	"net/http"

	"github.com/diego28e/backend-wealth-builder/internal/categories"
)

func (h *handler) listCurrencies(w http.ResponseWriter, r *http.Request) {
	list, err := h.Categories.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) listCategoryGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.Categories.ListCategoryGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Categories.ListCategories(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in categories.CreateInput
	if !decode(w, r, &in) {
		return
	}
	category, err := h.Categories.CreateCategory(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}
