package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"statdesk/internal/config"
	"statdesk/internal/freshness"
	"statdesk/internal/handlers"
	"statdesk/internal/logging"
	"statdesk/internal/metrics"
	"statdesk/internal/middleware"
	"statdesk/internal/provider"
	"statdesk/internal/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	priceDomain    = "price index"
	activityDomain = "industrial activity"

	defaultPricePrompt = "You are the price index assistant. You answer questions about " +
		"consumer price statistics using the registered reference documents."
	defaultActivityPrompt = "You are the industrial activity assistant. You answer questions " +
		"about industrial production and activity statistics using the registered reference documents."
)

type storeSpec struct {
	id         string
	domain     string
	route      string
	promptFile string
	fallback   string
}

func main() {
	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	logging.SetupLogger()

	slog.Info("Starting statdesk", slog.String("version", "1.0.0"))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	client := provider.NewOpenAIClient(cfg.OpenAIAPIKey)
	refresher := freshness.NewRefresher(client)
	grounded := services.NewGrounded(client)

	specs := []storeSpec{
		{id: cfg.PriceStoreID, domain: priceDomain, route: "/price", promptFile: "price.txt", fallback: defaultPricePrompt},
		{id: cfg.ActivityStoreID, domain: activityDomain, route: "/activity", promptFile: "activity.txt", fallback: defaultActivityPrompt},
	}

	// Tag every store's documents with freshness attributes before
	// serving traffic. The two stores are independent, so they refresh
	// in parallel. A failed refresh only disables the is_latest filter
	// for that store; it never aborts startup.
	refreshCtx, refreshCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	results := make([]freshness.Result, len(specs))
	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			results[i] = refresher.Refresh(refreshCtx, spec.id)
			return nil
		})
	}
	_ = g.Wait()
	refreshCancel()

	storeConfigs := make([]services.StoreConfig, len(specs))
	readiness := make(map[string]bool, len(specs))
	for i, spec := range specs {
		ready := results[i].OK
		readiness[spec.domain] = ready
		if ready {
			metrics.StoreReady.WithLabelValues(spec.id).Set(1)
		} else {
			metrics.StoreReady.WithLabelValues(spec.id).Set(0)
			slog.Warn("Serving store without freshness filtering",
				slog.String("store", spec.id),
				slog.String("domain", spec.domain))
		}

		storeConfigs[i] = services.StoreConfig{
			ID:            spec.id,
			Domain:        spec.domain,
			SystemPrompt:  loadPrompt(cfg.PromptDir, spec.promptFile, spec.fallback),
			MaxResults:    cfg.MaxResults,
			EnforceLatest: ready,
		}
	}

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.APIRateLimitMiddleware())
	for i, spec := range specs {
		handler := handlers.NewAskHandler(grounded, storeConfigs[i])
		apiRouter.HandleFunc(spec.route, handler.HandleAsk).Methods("POST")
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(readiness)
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully")
}

// loadPrompt reads a store's system prompt from the prompt directory,
// falling back to the built-in text when the file is missing or empty.
func loadPrompt(dir, name, fallback string) string {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		slog.Warn("Using built-in system prompt", slog.String("file", name), "error", err)
		return fallback
	}
	prompt := strings.TrimSpace(string(raw))
	if prompt == "" {
		return fallback
	}
	return prompt
}
