// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"bookstall/internal/catalog"
	"bookstall/internal/config"
	"bookstall/internal/inventory"
	"bookstall/internal/reports"
	"bookstall/internal/stalls"
	"bookstall/internal/store"
	"bookstall/internal/volunteers"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := initTracing(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialise tracing: %v", err)
		}
		defer shutdown(ctx)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	catalogSvc := catalog.NewService(st)
	volunteerSvc := volunteers.NewService(st)
	stallSvc := stalls.NewService(st)
	inventorySvc := inventory.NewService(st)
	reportSvc := reports.NewService(st)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(rateLimit(cfg.RateLimitRPS))

	router.Route("/api/v1", func(r chi.Router) {
		catalog.NewHandler(catalogSvc).Routes(r)
		volunteers.NewHandler(volunteerSvc).Routes(r)
		stalls.NewHandler(stallSvc).Routes(r)
		inventory.NewHandler(inventorySvc).Routes(r)
		reports.NewHandler(reportSvc).Routes(r)
	})

	fmt.Printf("🚀 Starting book stall server on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, running on the in-memory store")
		return store.NewMemory(), nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	pg := store.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}

// rateLimit applies a process-wide token bucket to every request.
func rateLimit(rps int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), rps*2)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
