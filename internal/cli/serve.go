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
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Port            string
	Migrate         bool
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the storefront HTTP API until SIGINT or SIGTERM.

With --migrate the relational schema is brought up to date and an empty
catalog is seeded before the server starts.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "listen port, overrides SERVER_PORT")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply migrations and seed the catalog before serving")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 30*time.Second, "grace period for in-flight requests")

	return cmd
}

func runServe(ctx context.Context, rootOpts *RootOptions, opts *ServeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := newApplication(rootOpts)
	if err != nil {
		return err
	}
	if opts.Port != "" {
		application.Config.ServerPort = opts.Port
	}

	if opts.Migrate {
		if _, err := application.Migrate(ctx); err != nil {
			return err
		}
	}

	if err := application.Initialize(ctx); err != nil {
		return err
	}

	if opts.Migrate {
		if _, err := application.SeedCatalog(ctx); err != nil {
			application.Logger.Error("Catalog seeding failed", "error", err)
		}
	}

	server := &http.Server{
		Addr:         ":" + application.Config.ServerPort,
		Handler:      application.HTTPHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		application.Logger.Info("Starting HTTP server", "port", application.Config.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		application.Logger.Error("HTTP server failed", "error", err)
		_ = application.Shutdown(ctx)
		return err
	}

	application.Logger.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	if err := application.Shutdown(shutdownCtx); err != nil {
		return err
	}

	application.Logger.Info("Application gracefully stopped.")
	return nil
}
