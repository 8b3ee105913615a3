// Command notekeeper-mock serves an in-memory notes backend for local
// development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
	"github.com/nhle/notekeeper/internal/mockapi"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "notekeeper-mock:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	flags := pflag.NewFlagSet("notekeeper-mock", pflag.ContinueOnError)
	addr := flags.String("addr", envOr("NOTEKEEPER_MOCK_ADDR", ":8085"), "listen address")
	latency := flags.Duration("latency", 0, "artificial delay added to every response")
	token := flags.String("token", os.Getenv("NOTEKEEPER_API_TOKEN"), "require this Bearer token")
	bare := flags.Bool("bare-mutations", false, "answer mutations with null data")
	seed := flags.Bool("seed", true, "start with demo data")
	origins := flags.StringSlice("allow-origin", nil, "CORS origins (default all)")
	level := flags.String("log-level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	log, err := logger.New(*level, "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	gin.SetMode(gin.ReleaseMode)
	backend := mockapi.NewBackend()
	if *seed {
		mockapi.Seed(backend)
	}
	router := mockapi.NewRouter(backend, mockapi.Options{
		Latency:       *latency,
		Token:         *token,
		AllowOrigins:  *origins,
		BareMutations: *bare,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "mock backend listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
