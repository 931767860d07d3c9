package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umbra-security/threatlens/internal/adapter/feed"
	"github.com/umbra-security/threatlens/internal/adapter/handler"
	"github.com/umbra-security/threatlens/internal/adapter/repository"
)

func main() {
	// Load .env file if it exists (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found (this is fine)")
	}

	// In-memory store: data lives for the session only
	store := repository.NewStore()

	// Initialize feed metrics
	feed.InitMetrics()
	log.Println("✅ Prometheus metrics initialized")

	// Feed registry with the built-in source catalog
	fetcher := feed.NewHTTPFetcher(nil)
	registry := feed.NewRegistry(fetcher, store, feed.DefaultSources())
	log.Printf("✅ Feed registry loaded (%d sources)", len(registry.Sources()))

	// HTTP router
	router := mux.NewRouter()

	restHandler := handler.NewRestHandler(store, registry)
	restHandler.Register(router)

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Middleware
	router.Use(loggingMiddleware)
	router.Use(authMiddleware)

	// HTTP server
	port := getEnv("REST_API_PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // feed syncs can take a while
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("🚀 ThreatLens REST API listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("→ %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
		log.Printf("← %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		expectedToken := os.Getenv("REST_API_AUTH_TOKEN")

		// If no token configured, allow all requests (development mode)
		if expectedToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		if token != "Bearer "+expectedToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
