package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JanMattner/cuevox/internal/cli"
	httpAdapter "github.com/JanMattner/cuevox/pkg/adapters/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the interpreter as a JSON API over HTTP:

  POST /interpret   {"text": "..."}
  GET  /rules
  GET  /history?limit=N
  GET  /events      (server-sent events)
  GET  /metrics     (Prometheus, if enabled)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := loadApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		srvState := &httpAdapter.Server{
			Interpreter: app.Serialized(),
			Journal:     app.Journal,
			Logger:      app.Logger,
		}
		if app.Config.HTTP.Metrics {
			srvState.Metrics = app.Metrics.Handler()
		}
		if watch {
			if err := app.Watch(sigCtx, nil); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(srvState),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(sigCtx)
		g.Go(func() error {
			app.Logger.Info("Starting cuevox server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			app.Logger.Info("Start shutdown", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			app.Logger.Info("Server stopped gracefully")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides the configuration)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload items and rules when their files change")
}
