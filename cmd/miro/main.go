// Package main is the miro command line: it evaluates expressions and serves
// the evaluation API.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lemonberrylabs/miro/pkg/config"
	"github.com/lemonberrylabs/miro/pkg/runtime"
	"github.com/lemonberrylabs/miro/pkg/stdlib"
	"github.com/lemonberrylabs/miro/pkg/store"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "miro",
		Short:        "Evaluate miro stylesheet expressions",
		SilenceUsage: true,
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("miro version {{.Version}}\n")

	root.PersistentFlags().String("config", "", "Configuration file (env "+config.EnvConfig+")")
	root.PersistentFlags().String("log-level", "", "debug, info, warn, error or none (env "+config.EnvLogLevel+")")

	root.AddCommand(newEvalCmd(), newFunctionsCmd(), newServeCmd())
	return root
}

// setup loads the configuration named by the flags and builds the logger and
// engine from it.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *runtime.Engine, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	log, err := cfg.Log.Logger()
	if err != nil {
		return nil, nil, nil, err
	}
	engine := runtime.NewEngine(store.New(), stdlib.NewRegistry(), log)
	return cfg, log, engine, nil
}
