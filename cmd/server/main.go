package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/roiboard/roiboard/internal/asset"
	"github.com/roiboard/roiboard/internal/auth"
	"github.com/roiboard/roiboard/internal/config"
	"github.com/roiboard/roiboard/internal/db"
	"github.com/roiboard/roiboard/internal/export"
	mw "github.com/roiboard/roiboard/internal/middleware"
	"github.com/roiboard/roiboard/internal/roiset"
	"github.com/roiboard/roiboard/internal/session"
	"github.com/roiboard/roiboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	opts, err := config.LoadEngine(cfg.EngineProfile)
	if err != nil {
		slog.Error("load engine profile", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres when configured, otherwise sets on disk and users in memory.
	var (
		users auth.UserStore
		sets  store.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		users = auth.NewPGUserStore(pool)
		sets = store.NewPGStore(pool)
	} else {
		fs, err := store.NewFileStore(cfg.SetDir)
		if err != nil {
			slog.Error("open set store", "error", err)
			os.Exit(1)
		}
		users = auth.NewMemoryUserStore()
		sets = fs
		slog.Warn("DATABASE_URL not set, users are kept in memory", "setDir", cfg.SetDir)
	}

	lib, err := asset.NewLibrary(cfg.AssetDir)
	if err != nil {
		slog.Error("open asset library", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(users, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	setService := roiset.NewService(sets)
	setHandler := roiset.NewHandler(setService)

	assetHandler := asset.NewHandler(lib)
	exportHandler := export.NewHandler(setService)

	sessions := session.NewManager(opts, setService, lib)
	go sessions.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, sessions.Len())
	}).Methods("GET")

	// Images are public so anonymous sessions can load them.
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	setHandler.Routes(api)
	api.HandleFunc("/sets/{setId}/export", exportHandler.ExportSet).Methods("GET")

	r.HandleFunc("/ws/session", sessions.Handler(authService, cfg.OriginHosts()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Hijacked websocket connections are not tracked by Shutdown.
		sessions.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "hitOrder", opts.HitOrder)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
