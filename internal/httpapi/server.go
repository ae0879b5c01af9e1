// Package httpapi exposes the ledger services over HTTP. Authentication is
// done upstream; the caller is identified by the X-User-ID header.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diego28e/backend-wealth-builder/internal/accounts"
	"github.com/diego28e/backend-wealth-builder/internal/categories"
	"github.com/diego28e/backend-wealth-builder/internal/goals"
	"github.com/diego28e/backend-wealth-builder/internal/ledger"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/receipt"
	"github.com/diego28e/backend-wealth-builder/internal/summary"
)

const (
	UserHeader     = "X-User-ID"
	requestTimeout = 60 * time.Second
)

// ReceiptProcessor is satisfied by *receipt.Processor.
type ReceiptProcessor interface {
	ProcessImage(ctx context.Context, userID, accountID uuid.UUID, image []byte, mimeType string, opts receipt.Options) (*receipt.Result, error)
}

// Analyzer is satisfied by *ai.Advisor.
type Analyzer interface {
	AnalyzeUser(ctx context.Context, userID uuid.UUID) (string, error)
}

// YieldTrigger starts a yield run out of schedule.
type YieldTrigger interface {
	Notify()
}

// Services are the handlers' dependencies. Receipts, Analyzer and Yield
// may be nil when the backing integration is not configured.
type Services struct {
	Ledger     *ledger.Service
	Accounts   *accounts.Service
	Categories *categories.Service
	Goals      *goals.Service
	Summary    *summary.Service
	Receipts   ReceiptProcessor
	Analyzer   Analyzer
	Yield      YieldTrigger
}

type handler struct {
	Services
}

// NewRouter wires every route. Requests are logged with log and carry it in
// their context.
func NewRouter(svc Services, log zerolog.Logger) http.Handler {
	h := &handler{Services: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recovery)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(identify)

		r.Get("/currencies", h.listCurrencies)
		r.Get("/category-groups", h.listCategoryGroups)
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.listAccounts)
			r.Post("/", h.createAccount)
			r.Get("/{id}", h.getAccount)
			r.Patch("/{id}", h.updateAccount)
			r.Put("/{id}/balance", h.resetBalance)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.listTransactions)
			r.Post("/", h.createTransaction)
			r.Get("/{id}", h.getTransaction)
			r.Patch("/{id}", h.updateTransaction)
			r.Delete("/{id}", h.deleteTransaction)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", h.listGoals)
			r.Post("/", h.createGoal)
			r.Get("/{id}", h.getGoal)
			r.Patch("/{id}", h.updateGoal)
			r.Delete("/{id}", h.deleteGoal)
		})

		r.Route("/summary", func(r chi.Router) {
			r.Get("/balance", h.userBalance)
			r.Get("/category-groups", h.categoryGroupSummary)
			r.Get("/accounts", h.accountActivity)
		})

		r.Post("/receipts", h.uploadReceipt)
		r.Get("/analysis", h.analysis)
	})

	r.Post("/admin/yield/run", h.runYield)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) runYield(w http.ResponseWriter, r *http.Request) {
	if h.Yield == nil {
		writeMessage(w, http.StatusServiceUnavailable, "yield scheduler is not running")
		return
	}
	h.Yield.Notify()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

type userKey struct{}

// identify rejects requests without a valid X-User-ID.
func identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(UserHeader))
		if err != nil || id == uuid.Nil {
			writeMessage(w, http.StatusUnauthorized, "missing or invalid "+UserHeader+" header")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, id)
		log := logger.FromContext(ctx).With().Str("user_id", id.String()).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx, log)))
	})
}

func userID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(userKey{}).(uuid.UUID)
	return id
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log := logger.FromContext(r.Context())
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("panic recovered")
				writeMessage(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
