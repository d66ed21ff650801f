package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/semsql/internal/server"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Models string
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP.

Routes:
  GET  /version
  GET  /dialects
  POST /render?dialect=NAME   (dialect=* renders for every dialect)

The models are loaded once at startup. SIGINT or SIGTERM shuts the
server down gracefully.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Models, "models", "", "models directory (default from config)")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()
	cfg := opts.config()

	models, err := loadModelsForCommand(opts.RootOptions, opts.Models, formatter)
	if err != nil {
		return err
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}
	if _, err := reg.Lookup(cfg.Dialect); err != nil {
		_ = formatter.Error(ErrCodeDialect, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeDialect, err)
	}

	addr := opts.Listen
	if addr == "" {
		addr = cfg.ListenAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(reg, models, cfg.Dialect, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "dialect", cfg.Dialect, "models", len(models))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "serving", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "shutdown", err)
	}
	return nil
}
