package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/cexll/sticky/internal/config"
	"github.com/cexll/sticky/internal/web"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var (
	loadDotEnv         = godotenv.Load
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting sticky API server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("Transport: %s (retry: %t)", cfg.Transport, cfg.Retry)
	log.Printf("GitHub API: %s", cfg.GitHubAPIURL)
	if cfg.GitHubAppID != "" && cfg.GitHubToken == "" {
		log.Printf("GitHub App ID: %s", cfg.GitHubAppID)
	}
	if cfg.Repository != "" {
		log.Printf("Default repository: %s", cfg.Repository)
	}

	handler := web.NewHandler(cfg.APISecret, cfg.NewClient, cfg.Thread)

	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	// Root endpoint with info
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"service":"sticky","status":"running","transport":"%s"}`, cfg.Transport)
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Publish endpoint: http://localhost%s/v1/publish", addr)
	log.Printf("Health check: http://localhost%s/health", addr)

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}
