package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tabsplit/tabsplit/internal/auth"
	"github.com/tabsplit/tabsplit/internal/server"
	"github.com/tabsplit/tabsplit/internal/service"
	"github.com/tabsplit/tabsplit/internal/storage/sqlite"
)

var (
	serveAddr   string
	serveDBPath string
)

// serveCmd starts the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tabsplit HTTP server",
	Long: `Start the HTTP server serving the tabsplit REST API: bill ingestion,
balance reads, settlement, user and group management, plus /metrics and
/healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :PORT or :8080)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite database path (default DB_PATH or ./data/tabsplit.db)")
	rootCmd.AddCommand(serveCmd)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func runServe() error {
	addr := serveAddr
	if addr == "" {
		addr = ":" + getEnv("PORT", "8080")
	}
	dbPath := serveDBPath
	if dbPath == "" {
		dbPath = getEnv("DB_PATH", "./data/tabsplit.db")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Warn("JWT_SECRET not set, using an insecure development secret")
		jwtSecret = "dev-secret-do-not-use-in-production"
	}
	currency := getEnv("CURRENCY", "USD")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		return err
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	tokens := auth.NewJWTManager(jwtSecret, auth.DefaultTokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := server.New(
		service.NewUserService(store, authenticator, tokens),
		service.NewGroupService(store),
		service.NewBillService(store, nil, currency),
		service.NewLedgerService(store, currency),
		tokens,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return err
	}
	slog.Info("server exited gracefully")
	return nil
}
