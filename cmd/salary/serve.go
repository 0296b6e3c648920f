package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salary-predictor/internal/predictor"
	"github.com/YuminosukeSato/salary-predictor/internal/server"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		model string
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the salary prediction form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("model") {
				cfg.Model.Path = model
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// モデルは起動時に一度だけ読み込む
			handle := predictor.Open(cfg.Model.Path)
			if !handle.Available() {
				log.GetLoggerWithName("serve").Warn("model unavailable, serving banner only",
					log.PathKey, cfg.Model.Path,
					log.ErrAttr(handle.Err()),
				)
			}

			access := zerolog.New(os.Stderr).With().Timestamp().Logger()
			srv := server.New(handle,
				server.WithAddr(cfg.Server.Addr),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
				server.WithLogger(access),
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&model, "model", "model.gob", "model artifact path")
	cmd.Flags().StringVar(&addr, "addr", ":8501", "listen address")
	return cmd
}
