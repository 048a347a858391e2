package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newRootCmd() *cobra.Command {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	root := &cobra.Command{
		Use:           "tsnisam",
		Short:         "Technical indicators and Monte Carlo price paths for NSE/BSE tickers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", cfgPath, "path to config.yaml")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newIndicatorsCmd(&cfgPath))
	root.AddCommand(newSignalCmd(&cfgPath))
	root.AddCommand(newSimulateCmd(&cfgPath))
	root.AddCommand(newDigestCmd(&cfgPath))
	return root
}
