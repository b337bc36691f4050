package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/bolinas/config"
)

const version = "0.1.0"

var log = commonlog.GetLogger("bolinas")

// app holds the settings shared by all subcommands. Settings come from
// config.Default, then the --config file, then flags.
type app struct {
	configPath string
	verbosity  int
	logFile    string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:     "bolinas",
		Short:   "Parse strings and hypergraphs with hyperedge replacement grammars",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML settings file")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Telemetry.Verbosity = a.verbosity
	}
	if flags.Changed("log-file") {
		cfg.Telemetry.LogFile = a.logFile
	}
	a.cfg = cfg

	var path *string
	if cfg.Telemetry.LogFile != "" {
		path = &cfg.Telemetry.LogFile
	}
	commonlog.Configure(cfg.Telemetry.Verbosity, path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
