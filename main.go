package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"listrigo/internal/config"
	"listrigo/internal/deadline"
	"listrigo/internal/device"
	"listrigo/internal/flow"
	"listrigo/internal/handlers"
	"listrigo/internal/realtime"
	"listrigo/internal/storage"
)

func main() {
	// Configuration
	cfgPath := getEnv("LISTRIGO_CONFIG", config.DefaultConfigFileName)
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cutoff, err := cfg.Cutoff()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize store
	s, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer s.Close()

	dispatcher := flow.NewDispatcher()
	hub := realtime.NewHub()
	defer hub.Close()

	poller := deadline.New(deadline.Config{
		Interval: cfg.PollInterval(),
		Lookback: cfg.Lookback(),
		Cutoff:   cutoff,
	}, dispatcher)

	registry := device.NewRegistry(device.RegistryOptions{
		Store:     s,
		Publisher: hub,
		Triggers:  dispatcher,
		Resolver:  poller,
		Debounce:  cfg.Debounce(),
		Cutoff:    cutoff,
		Persons:   cfg.PersonList(),
	})
	if err := registry.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load devices: %v", err)
	}

	// Deadlines only apply to task lists.
	poller.Start(func() []deadline.Candidate {
		var out []deadline.Candidate
		for _, d := range registry.ByKind(device.KindBasic) {
			for _, it := range d.Tasks() {
				out = append(out, deadline.Candidate{DeviceID: d.ID, Item: it})
			}
		}
		return out
	})
	defer poller.Stop()

	// Initialize handlers
	h := handlers.New(registry, hub)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Mount("/", h.Routes())

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting server on http://localhost%s", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	// Flush pending list writes before the store closes.
	if err := registry.Close(); err != nil {
		log.Printf("Registry close: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
