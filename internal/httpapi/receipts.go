package httpapi

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/receipt"
)

func (h *handler) analysis(w http.ResponseWriter, r *http.Request) {
	if h.Analyzer == nil {
		writeMessage(w, http.StatusServiceUnavailable, "financial analysis is not configured")
		return
	}
	text, err := h.Analyzer.AnalyzeUser(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

var dataURLPrefix = regexp.MustCompile(`^data:([\w/+.-]+);base64,`)

type receiptRequest struct {
	AccountID     uuid.UUID `json:"account_id"`
	ImageBase64   string    `json:"image_base64"`
	MimeType      string    `json:"mime_type,omitempty"`
	AllowOldDates bool      `json:"allow_old_dates,omitempty"`
}

func (h *handler) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	if h.Receipts == nil {
		writeMessage(w, http.StatusServiceUnavailable, "receipt processing is not configured")
		return
	}
	var req receiptRequest
	if !decode(w, r, &req) {
		return
	}
	encoded := strings.TrimSpace(req.ImageBase64)
	mimeType := req.MimeType
	if m := dataURLPrefix.FindStringSubmatch(encoded); m != nil {
		if mimeType == "" {
			mimeType = m[1]
		}
		encoded = encoded[len(m[0]):]
	}
	if encoded == "" {
		writeError(w, r, apperr.Validation("image_base64 is required"))
		return
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		writeError(w, r, apperr.Validation("image_base64 is not valid base64"))
		return
	}

	res, err := h.Receipts.ProcessImage(r.Context(), userID(r), req.AccountID, image, mimeType,
		receipt.Options{AllowOldDates: req.AllowOldDates})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
