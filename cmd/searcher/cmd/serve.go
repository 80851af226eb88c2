package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newscope/searcher/internal/api"
	"github.com/newscope/searcher/internal/embed"
	"github.com/newscope/searcher/internal/search"
	"github.com/newscope/searcher/internal/store"
)

const shutdownGrace = 10 * time.Second

// newServeCmd creates the serve command running the search API.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the search API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Elastic, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AssertIndices(ctx); err != nil {
		return err
	}

	encoder := embed.NewCachedEncoder(embed.NewHTTPEncoder(embed.HTTPConfig{
		Host:       cfg.Embeddings.Host,
		Model:      cfg.Embeddings.ModelPath,
		Dimensions: cfg.Embeddings.Dimensions,
	}), cfg.Embeddings.CacheSize)

	svc := search.NewService(st, encoder, log)
	router := api.NewRouter(svc, cfg.CORS, log)

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("search API listening", "addr", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
