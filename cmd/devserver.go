package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/mehmetcc/resirent/internal/devapi"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDevServerCmd(st *rootState) *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve an in-memory rental API for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := st.cfg, st.logger
			persons := person.NewPersonRepo(logger)
			tokens := token.NewTokenService(logger, token.NewRefreshTokenRepo(logger), persons, cfg.JWTConfig)
			api := devapi.NewServer(logger, cfg.DevServerConfig, persons, tokens)

			srv := &http.Server{
				Addr:         net.JoinHostPort(host, cfg.DevServerConfig.Port),
				Handler:      api.Handler(),
				ReadTimeout:  cfg.DevServerConfig.ReadTimeout,
				WriteTimeout: cfg.DevServerConfig.WriteTimeout,
				IdleTimeout:  cfg.DevServerConfig.IdleTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("dev api listening", zap.String("addr", srv.Addr), zap.String("base_path", devapi.BasePath))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down dev api")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "interface to listen on")
	return cmd
}
