package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhpenta/imageedit/server"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		listen string
		model  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the image API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			if model != "" {
				a.cfg.Model = model
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, err := a.manager(ctx, a.cfg.SaveDir)
			if err != nil {
				return err
			}
			defer m.Close()

			srv := server.New(m,
				server.WithLogger(a.logger),
				server.WithModels(m),
				server.WithGenerateConfig(a.cfg.GenerateConfig()),
				server.WithStorage(m.Storage()),
			)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(a.cfg.Listen)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from config, then :8080)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (see 'imageedit models')")
	return cmd
}
