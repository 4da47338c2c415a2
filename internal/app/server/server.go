package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"paystub/internal/domain/audit"
	"paystub/internal/domain/auth"
	"paystub/internal/domain/company"
	"paystub/internal/domain/estimate"
	"paystub/internal/domain/paystub"
	"paystub/internal/platform/config"
	cryptoutil "paystub/internal/platform/crypto"
	"paystub/internal/platform/db"
	"paystub/internal/platform/jobs"
	"paystub/internal/platform/metrics"
	audithandler "paystub/internal/transport/http/handlers/audit"
	authhandler "paystub/internal/transport/http/handlers/auth"
	companyhandler "paystub/internal/transport/http/handlers/company"
	paystubshandler "paystub/internal/transport/http/handlers/paystubs"
	"paystub/internal/transport/http/middleware"
)

func Run() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if err := db.Seed(ctx, pool, cfg.SeedUserEmail, cfg.SeedUserName, cfg.SeedUserPassword); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	collector := metrics.New()
	estimator := estimate.NewClient(cfg.TaxServiceURL, cfg.TaxServiceTimeout)
	stubs := paystub.NewStore(pool)
	companies := company.NewStore(pool)
	service := paystub.NewService(stubs, companies, estimator)
	users := auth.NewStore(pool)
	idem := middleware.NewIdempotencyStore(pool)
	auditSvc := audit.New(pool)

	maintenance := jobs.New(pool, service)
	maintenance.Start(ctx, cfg.MaintenanceInterval)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(users, cfg.JWTSecret, cfg.TokenTTL, auditSvc).RegisterRoutes(r)
		companyhandler.NewHandler(companies, auditSvc).RegisterRoutes(r)
		paystubshandler.NewHandler(service, crypto, collector, idem, auditSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	log.Printf("pay stub server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
