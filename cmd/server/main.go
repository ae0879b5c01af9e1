package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/diego28e/backend-wealth-builder/internal/accounts"
	"github.com/diego28e/backend-wealth-builder/internal/ai"
	"github.com/diego28e/backend-wealth-builder/internal/blob"
	"github.com/diego28e/backend-wealth-builder/internal/categories"
	"github.com/diego28e/backend-wealth-builder/internal/config"
	"github.com/diego28e/backend-wealth-builder/internal/database"
	"github.com/diego28e/backend-wealth-builder/internal/goals"
	"github.com/diego28e/backend-wealth-builder/internal/httpapi"
	"github.com/diego28e/backend-wealth-builder/internal/ledger"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/notify"
	"github.com/diego28e/backend-wealth-builder/internal/receipt"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
	"github.com/diego28e/backend-wealth-builder/internal/repository/memory"
	"github.com/diego28e/backend-wealth-builder/internal/repository/postgres"
	"github.com/diego28e/backend-wealth-builder/internal/rrule"
	"github.com/diego28e/backend-wealth-builder/internal/summary"
	"github.com/diego28e/backend-wealth-builder/internal/yield"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	accountSvc := accounts.NewService(store)
	ledgerSvc := ledger.NewService(store)
	categorySvc := categories.NewService(store)

	svc := httpapi.Services{
		Ledger:     ledgerSvc,
		Accounts:   accountSvc,
		Categories: categorySvc,
		Goals:      goals.NewService(store),
		Summary:    summary.NewService(store),
	}

	if cfg.AIAPIKey != "" {
		svc.Analyzer = ai.NewAdvisor(ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel), store)
		log.Info().Str("model", cfg.AIModel).Msg("financial advisor enabled")
	} else {
		log.Info().Msg("AI_API_KEY not set, financial analysis disabled")
	}

	if cfg.GeminiAPIKey != "" {
		extractor, err := receipt.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		uploader, err := blob.NewGCS(ctx, cfg.ReceiptsBucket, cfg.ReceiptsPublicBaseURL, cfg.GCSCredentialsFile)
		if err != nil {
			return err
		}
		defer uploader.Close()
		materializer := receipt.NewMaterializer(ledgerSvc, categorySvc)
		svc.Receipts = receipt.NewProcessor(categorySvc, extractor, uploader, materializer)
		log.Info().Str("bucket", cfg.ReceiptsBucket).Msg("receipt processing enabled")
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, receipt processing disabled")
	}

	schedule, err := rrule.NewSchedule(cfg.YieldSchedule, time.UTC)
	if err != nil {
		return err
	}
	var notifier yield.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		notifier = tg
	}
	scheduler := yield.NewScheduler(yield.NewAccruer(accountSvc, store, cfg.YieldAccountTimeout), schedule, notifier)
	svc.Yield = scheduler

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Store, func(), error) {
	if cfg.DataBackend == config.BackendMemory {
		log.Warn().Msg("using the in-memory backend, data is lost on exit")
		return memory.NewSeededStore(), func() {}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("connected to database")

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info().Msg("database migrations completed")
	return postgres.NewStore(db), db.Close, nil
}
