package main

import (
	"github.com/spf13/cobra"

	"github.com/privchat/privchat/config"
	"github.com/privchat/privchat/internal/server"
	"github.com/privchat/privchat/pkg/logger"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			lg, err := logger.Init(cfg.General.LogLevel, cfg.General.Debug)
			if err != nil {
				return err
			}
			defer lg.Sync()
			return server.Run(cfg, lg)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	return serve
}
