package httpapi

import (
	"net/http"

	"github.com/diego28e/backend-wealth-builder/internal/goals"
)

func (h *handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var in goals.CreateInput
	if !decode(w, r, &in) {
		return
	}
	goal, err := h.Goals.CreateGoal(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *handler) listGoals(w http.ResponseWriter, r *http.Request) {
	list, err := h.Goals.ListGoals(r.Context(), userID(r), queryBool(r, "include_archived"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := h.Goals.GetGoal(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch goals.Patch
	if !decode(w, r, &patch) {
		return
	}
	goal, err := h.Goals.UpdateGoal(r.Context(), userID(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// deleteGoal archives the goal and returns it.
func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := h.Goals.DeleteGoal(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}
