package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/interview-prep/backend/internal/admin"
	"github.com/interview-prep/backend/internal/auth"
	"github.com/interview-prep/backend/internal/config"
	"github.com/interview-prep/backend/internal/database"
	"github.com/interview-prep/backend/internal/events"
	"github.com/interview-prep/backend/internal/feedback"
	"github.com/interview-prep/backend/internal/httputil"
	"github.com/interview-prep/backend/internal/importer"
	"github.com/interview-prep/backend/internal/interviews"
	"github.com/interview-prep/backend/internal/middleware"
	"github.com/interview-prep/backend/internal/mocks"
	"github.com/interview-prep/backend/internal/models"
	"github.com/interview-prep/backend/internal/practice"
	"github.com/interview-prep/backend/internal/resumes"
)

const shutdownTimeout = 10 * time.Second

var (
	localOrigin  = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1)(:\d+)?$`)
	vercelOrigin = regexp.MustCompile(`^https://[a-z0-9-]+\.vercel\.app$`)
)

func addServeFlags(fs *pflag.FlagSet) {
	fs.String("port", "8080", "HTTP listen port")
	fs.String("question-bank", "", "question bank backend: postgres or mongo")
	fs.String("upload-driver", "", "resume storage: local or minio")
	fs.String("feedback-provider", "", "mock feedback drafts: none, mock, anthropic, openai")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	practiceStore := practice.NewStore(db)
	bank, closeBank, err := openBank(ctx, cfg, practiceStore)
	if err != nil {
		return err
	}
	defer closeBank()

	publisher, closePublisher := openPublisher(cfg.Events)
	defer closePublisher()

	files, err := openFileStorage(ctx, cfg)
	if err != nil {
		return err
	}

	drafter, err := feedback.New(cfg.Feedback)
	if err != nil {
		return err
	}
	// A nil *Drafter must not become a non-nil interface.
	var mockDrafter mocks.Drafter
	if drafter != nil {
		mockDrafter = drafter
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authStore := auth.NewStore(db)
	resumeStore := resumes.NewStore(db)
	mockService := mocks.NewService(mocks.NewStore(db), mocks.DefaultQuestionSets(), mockDrafter, publisher)

	cleaner := resumes.NewCleaner(resumeStore, files, cfg.Uploads.CleanupInterval)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start resume cleaner: %w", err)
	}
	defer cleaner.Stop()

	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.Logging)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if local, ok := files.(*resumes.LocalStorage); ok && cfg.Uploads.BaseURL != "" {
		prefix := cfg.Uploads.BaseURL + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(local.Dir()))))
	}

	api := r.PathPrefix("/api").Subrouter()
	public := api.PathPrefix("").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Authenticate(tokens, authStore))
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.Authenticate(tokens, authStore), middleware.RequireAdmin)

	admin.NewHandler(admin.NewService(practiceStore, mockService, publisher)).RegisterRoutes(adminRoutes)
	auth.NewHandler(auth.NewService(authStore, tokens)).RegisterRoutes(public, protected)
	practice.NewHandler(practice.NewService(bank, practiceStore, publisher)).RegisterRoutes(protected)
	interviews.NewHandler(interviews.NewService(interviews.NewStore(db))).RegisterRoutes(protected)
	mocks.NewHandler(mockService).RegisterRoutes(protected)
	resumes.NewHandler(resumes.NewService(resumeStore, files)).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler(cfg.Server.ClientURL).Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "question_bank", cfg.Bank, "uploads", cfg.Uploads.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// corsHandler allows the configured client, local development servers and
// Vercel preview deployments.
func corsHandler(clientURL string) *cors.Cors {
	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			if clientURL != "" && origin == clientURL {
				return true
			}
			return localOrigin.MatchString(origin) || vercelOrigin.MatchString(origin)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
}

// questionBackend is what both question bank implementations offer.
type questionBackend interface {
	practice.QuestionBank
	importer.Sink
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

// openBank returns the question bank selected by cfg. The returned func
// releases whatever openBank connected to.
func openBank(ctx context.Context, cfg *config.Config, pg *practice.Store) (questionBackend, func(), error) {
	switch cfg.Bank {
	case config.BankMongo:
		client, mdb, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		bank := practice.NewMongoBank(mdb)
		if err := bank.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure question indexes: %w", err)
		}
		return bank, func() { _ = client.Disconnect(context.Background()) }, nil
	case config.BankPostgres, "":
		return pg, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown question-bank %q", cfg.Bank)
	}
}

func openPublisher(cfg config.EventsConfig) (events.Publisher, func()) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, func() {}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		slog.Warn("event publishing disabled", "error", err)
		return events.Nop{}, func() {}
	}
	slog.Info("publishing events", "exchange", cfg.Exchange)
	return p, p.Close
}

func openFileStorage(ctx context.Context, cfg *config.Config) (resumes.FileStorage, error) {
	if cfg.Uploads.Driver == config.UploadMinIO {
		return resumes.NewMinIOStorage(ctx, cfg.MinIO)
	}
	return resumes.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
}
