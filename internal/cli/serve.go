package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"research/internal/adapter/httpapi"
	"research/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vector store over HTTP",
	Long: `Start an HTTP server exposing upsert, delete, search and context
endpoints. The store is loaded once at startup and shared by all requests.

Routes:
  PUT    /v1/sources/{id}          {"owner","title","text"}
  DELETE /v1/sources/{id}?owner=
  GET    /v1/search?owner=&q=&k=
  GET    /v1/context?owner=&q=&k=
  GET    /v1/stats
  GET    /healthz`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	svc, err := openService(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	builder := usecase.NewContextBuilder(svc, svc, cfg.Search.MinScore, cfg.Search.ContextMaxChars)
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewHandler(svc, builder, cfg.Search.TopK, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "model", svc.ModelName())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
