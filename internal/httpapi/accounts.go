package httpapi

import (
	"errors"
	"net/http"

	"github.com/diego28e/backend-wealth-builder/internal/accounts"
	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
)

type createAccountRequest struct {
	accounts.CreateInput
	Configurations []accounts.ConfigurationInput `json:"configurations,omitempty"`
}

type updateAccountRequest struct {
	accounts.Patch
	Configurations *[]accounts.ConfigurationInput `json:"configurations,omitempty"`
}

type accountResponse struct {
	Account *models.Account `json:"account"`
	Warning string          `json:"warning,omitempty"`
}

// createAccount answers 201 even when only the configurations failed; the
// response then carries a warning.
func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decode(w, r, &req) {
		return
	}
	account, err := h.Accounts.CreateAccount(r.Context(), userID(r), req.CreateInput, req.Configurations)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, accountResponse{Account: account})
	case account != nil && errors.Is(err, accounts.ErrConfigurationsNotSaved):
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("account created without configurations")
		writeJSON(w, http.StatusCreated, accountResponse{
			Account: account,
			Warning: "account created but its configurations were not saved; resend them with PATCH",
		})
	default:
		writeError(w, r, err)
	}
}

func (h *handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Accounts.ListAccounts(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	account, err := h.Accounts.GetAccount(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateAccountRequest
	if !decode(w, r, &req) {
		return
	}
	account, err := h.Accounts.UpdateAccount(r.Context(), userID(r), id, req.Patch, req.Configurations)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *handler) resetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		CurrentBalance *int64 `json:"current_balance"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.CurrentBalance == nil {
		writeError(w, r, apperr.Validation("current_balance is required"))
		return
	}
	account, err := h.Accounts.ResetBalance(r.Context(), userID(r), id, *req.CurrentBalance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
