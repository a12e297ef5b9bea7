package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"batchgen/internal/httpapi"
	"batchgen/internal/pipeline"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		corsOrigins string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep the model loaded and answer batches over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("cors-origins") {
				cfg.Serve.CORSOrigins = splitCSV(corsOrigins)
			}
			ctx := cmd.Context()
			log := a.log

			formatter, err := cfg.Formatter()
			if err != nil {
				return err
			}
			h, err := openHandle(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer h.Close()

			httpapi.SetLogger(log.With().Str("component", "http").Logger())
			httpapi.SetRequestLogLevel(cfg.Log.Level)
			httpapi.SetMaxBodyBytes(cfg.Serve.MaxBodyBytes)
			httpapi.SetGenerateTimeout(time.Duration(cfg.Serve.GenerateTimeoutSeconds) * time.Second)
			httpapi.SetCORSOptions(len(cfg.Serve.CORSOrigins) > 0, cfg.Serve.CORSOrigins, nil, nil)
			httpapi.SetBaseContext(ctx)

			svc := httpapi.NewBatchService(httpapi.BatchOptions{
				Formatter: formatter,
				Backend:   h,
				Sampling:  cfg.Sampling,
				Observer: pipeline.MultiObserver{
					pipeline.LogObserver{Log: log},
					pipeline.MetricsObserver{},
				},
				MaxQueueDepth: cfg.Serve.MaxQueueDepth,
				MaxWait:       time.Duration(cfg.Serve.MaxWaitSeconds) * time.Second,
			})
			srv := &http.Server{
				Addr:              cfg.Serve.Addr,
				Handler:           httpapi.NewMux(svc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Serve.Addr).Str("runtime", h.Runtime()).Msg("batchgen listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated origins allowed by CORS (disabled when empty)")
	return cmd
}
