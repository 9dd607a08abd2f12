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

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/thebartekbanach/imgurproxy/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile string
	var listenAddr string

	flagSet := pflag.NewFlagSet("imgurproxy-server", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading IMGURPROXY_* variables")
	flagSet.StringVar(&listenAddr, "listen", "", "listen address, overrides IMGURPROXY_LISTEN_ADDR")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := loadEnvFile(envFile, flagSet.Changed("env-file")); err != nil {
		return err
	}

	cfg, err := config.FromEnvironment()
	if err != nil {
		return err
	}

	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("initializing proxy service",
		"extensions", cfg.Extensions,
		"parallel_probe", cfg.ParallelProbe,
		"coalesce", cfg.Coalesce,
		"timeout", cfg.Timeout,
	)
	router := InitializeRouter(cfg, logger)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "base_path", cfg.BasePath)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil

	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	return nil
}

// loadEnvFile never overrides variables already set in the environment.
// A missing default file is fine, a missing file passed explicitly is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}
