package main

import (
	"fmt"
	"log/slog"

	"carrier-gateway/internal/config"
	"carrier-gateway/pkg/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Carrier gateway operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.cfgPath, "config", "", "optional YAML config file")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSignCmd(opts))
	cmd.AddCommand(newTokenCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newMessageCmd(opts))
	return cmd
}

// load reads config and installs the process logger.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logger.New(cfg.App.Env, cfg.App.LogLevel))
	return cfg, nil
}
