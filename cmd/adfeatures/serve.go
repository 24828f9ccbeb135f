package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr   string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution and submission HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sch, err := a.loadSchema(ctx)
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			builder, err := a.payloadBuilder(strict)
			if err != nil {
				return err
			}
			market, err := a.marketplace()
			if err != nil {
				return err
			}
			api, err := httpapi.New(httpapi.Config{
				Schema:      sch,
				Resolver:    eng,
				Builder:     builder,
				Catalog:     market,
				Submitter:   market,
				MakeField:   a.cfg.Server.MakeField,
				ModelField:  a.cfg.Server.ModelField,
				CORSOrigins: a.cfg.Server.CORSOrigins,
				Logger:      a.logger.Named("http"),
			})
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			a.logger.Info("listening", zap.String("addr", addr), zap.String("schema", sch.Location()), zap.Int("fields", sch.Len()))

			errChan := make(chan error, 1)
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()

			select {
			case err := <-errChan:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("shutdown", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding server.addr")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject adverts with missing required fields")
	return cmd
}
