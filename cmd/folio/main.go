// CLAUDE:SUMMARY Entry point for the folio HTTP service: YAML config plus env overrides, SQLite article store, chi router with shield middleware, optional MCP over stdio.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/folio/articles"
	"github.com/hazyhaar/folio/dbopen"
	"github.com/hazyhaar/folio/docpipe"
	"github.com/hazyhaar/folio/shield"
)

// multipartOverhead is the body allowance on top of MaxFileSize for
// multipart boundaries and form fields.
const multipartOverhead = 1 << 20

func main() {
	mcpTransport := env("MCP_TRANSPORT", "")

	// Logging. Under MCP stdio, stdout carries the protocol.
	var logOut io.Writer = os.Stdout
	if mcpTransport == "stdio" {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: parseLevel(env("LOG_LEVEL", "info"))}))
	slog.SetDefault(logger)

	cfg := DefaultConfig()
	if path := env("FOLIO_CONFIG", ""); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
	}
	if port := env("PORT", ""); port != "" {
		cfg.Listen = ":" + port
	}
	cfg.DBPath = env("DB_PATH", cfg.DBPath)
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg.Import.Logger = logger
	pipe := docpipe.New(cfg.Import)

	if mcpTransport == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{Name: "folio", Version: "1.0.0"}, nil)
		pipe.RegisterMCP(srv)
		slog.Info("MCP stdio starting")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	opts := append(cfg.DB.options(), dbopen.WithMkdirAll(), dbopen.WithSchema(articles.Schema))
	db, err := dbopen.Open(cfg.DBPath, opts...)
	if err != nil {
		slog.Error("article db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := articles.NewService(articles.NewStore(db), pipe, articles.Config{Logger: logger})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Import.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen, "db", cfg.DBPath, "max_file_size", pipe.MaxFileSize())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// newRouter mounts the article API behind the shield middleware stack.
func newRouter(svc *articles.Service) http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.Stack(svc.Pipeline().MaxFileSize() + multipartOverhead) {
		r.Use(mw)
	}
	articles.NewHandler(svc).Routes(r)
	return r
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
