package main

import (
	"context"
	"fmt"

	"github.com/mehmetcc/resirent/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type rootState struct {
	envFile string
	logger  *zap.Logger
	cfg     *config.Config
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	st := &rootState{logger: logger}

	cmd := &cobra.Command{
		Use:           "resirent",
		Short:         "Command line front-end for the resirent rental API.",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(st.envFile, st.logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			st.cfg = cfg
			if cfg.IsLocal() {
				dev, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				st.logger = dev
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "optional dotenv file to load before the environment")

	cmd.AddCommand(
		newLoginCmd(st),
		newLogoutCmd(st),
		newWhoamiCmd(st),
		newRegisterRenterCmd(st),
		newRegisterOwnerCmd(st),
		newListingsCmd(st),
		newListingCmd(st),
		newMyListingsCmd(st),
		newCreateListingCmd(st),
		newUpdateListingCmd(st),
		newDeleteListingCmd(st),
		newBookCmd(st),
		newBookingsCmd(st),
		newSetBookingStatusCmd(st),
		newDashboardCmd(st),
		newDevServerCmd(st),
	)
	return cmd
}

// run builds the client side for one command and tears it down afterwards.
func (st *rootState) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, st.cfg, st.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			st.logger.Warn("failed to close session storage", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}
