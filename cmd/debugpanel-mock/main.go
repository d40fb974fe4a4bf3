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

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/debugpanel/internal/adapter/memory"
	"github.com/user/debugpanel/internal/delivery/http/handler"
	"github.com/user/debugpanel/internal/delivery/http/router"
	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/usecase"
	"github.com/user/debugpanel/pkg/config"
	"github.com/user/debugpanel/pkg/logger"
	"github.com/user/debugpanel/pkg/metrics"
)

func main() {
	// --- Configuration ---
	fs := pflag.NewFlagSet("debugpanel-mock", pflag.ExitOnError)
	configFile := fs.String("config", "", "Configuration file")
	fs.String("listen-addr", ":8081", "Address to listen on")
	fs.StringP("username", "U", "", "Accepted UI username")
	fs.StringP("password", "P", "", "Accepted UI password")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "json", "Log format (console, json)")
	logCapacity := fs.Int("log-capacity", memory.DefaultCapacity, "Number of received actions kept for /api/requests")
	_ = fs.Parse(os.Args[1:])

	v := config.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	for key, flag := range map[string]string{
		"listen_addr": "listen-addr",
		"username":    "username",
		"password":    "password",
		"log_level":   "log-level",
		"log_format":  "log-format",
	} {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
	cfg, err := config.Load(v, *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	if cfg.Username == "" || cfg.Password == "" {
		fmt.Fprintln(os.Stderr, "Error: the mock node needs --username and --password (or DEBUGPANEL_USERNAME and DEBUGPANEL_PASSWORD)")
		os.Exit(2)
	}

	// --- Logger ---
	log, cleanup, err := logger.New(logger.Diagnostics(zapcore.AddSync(os.Stdout)), logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		RunID:  uuid.NewString(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	defer cleanup()

	// --- Metrics ---
	m := metrics.New()

	// --- Use Cases ---
	panel := usecase.NewPanel(
		entity.Credentials{Username: cfg.Username, Password: cfg.Password},
		memory.NewActionLogRepo(*logCapacity),
		m,
		log,
	)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router.New(handler.NewHandler(panel, log), m, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting mock DebugPanel node", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Could not listen", zap.String("addr", cfg.ListenAddr), zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
