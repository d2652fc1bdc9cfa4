package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/fkhayef/duesledger/docs"
	"github.com/fkhayef/duesledger/internal/config"
	"github.com/fkhayef/duesledger/internal/database"
	"github.com/fkhayef/duesledger/internal/due"
	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/internal/ledger/postgres"
	"github.com/fkhayef/duesledger/internal/logger"
	"github.com/fkhayef/duesledger/internal/notification"
	"github.com/fkhayef/duesledger/internal/payment"
	"github.com/fkhayef/duesledger/internal/student"
	"github.com/fkhayef/duesledger/internal/summary"
	"github.com/fkhayef/duesledger/internal/user"
	mw "github.com/fkhayef/duesledger/pkg/middleware"
)

// @title                       Dues Ledger API
// @version                     1.0
// @description                 Departmental dues assignment, payment recording and balance reconciliation.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Debug, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("connected to database")

	if cfg.MigrateOnStart {
		version, err := database.Migrate(db)
		if err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		log.Info("database migrated", zap.Uint("version", version))
	}

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, log)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService, log)

	// Ledger: the single writer behind dues, students and payments
	ledgerService := ledger.NewService(postgres.NewStore(db), log,
		ledger.WithNotifier(notificationService),
		ledger.WithRecentPayments(cfg.RecentPaymentsLimit),
	)
	dueHandler := due.NewHandler(ledgerService, log)
	studentHandler := student.NewHandler(ledgerService, log)
	paymentHandler := payment.NewHandler(ledgerService, log)
	summaryHandler := summary.NewHandler(ledgerService, log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if cfg.Debug {
		log.Warn("X-Test-User-ID authentication is enabled")
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Authenticate(mw.AuthConfig{
			Secret:          []byte(cfg.JWTSecret),
			AllowTestHeader: cfg.Debug,
			Lookup:          userService,
		}))

		// Mount feature routers
		r.Mount("/dues", dueHandler.Routes())
		r.Mount("/students", studentHandler.Routes())
		r.Mount("/payments", paymentHandler.Routes())
		r.Mount("/summaries", summaryHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
		r.Mount("/users", userHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
