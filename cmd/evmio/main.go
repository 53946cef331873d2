// evmio extracts the storage I/O workload of an EVM chain from a tracing
// archive node and turns it into replayable key/value benchmark artifacts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChenxingLi/evm-io-tracker/common"
	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var configPath string
	var noColor bool

	rootCmd := &cobra.Command{
		Use:           "evmio",
		Short:         "EVM storage I/O tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := cfg.LoadFileKeepFlags(configPath, cmd.Flags()); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			common.SetColorsEnabled(!noColor)
			if err := log.InitLogger(cfg.LogLevel, cfg.LogJSON); err != nil {
				return err
			}
			log.EnableModules(cfg.Debug)
			log.Debug(log.CLIMonitoring, "Configuration", "config", cfg.String())
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "JSON config file; explicit flags take precedence")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	pf.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "emit JSON logs")
	pf.StringVar(&cfg.Debug, "debug", cfg.Debug, "comma separated debug modules, e.g. walker_mod,fetch_mod")
	pf.BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(
		newFetchCmd(cfg),
		newCombineCmd(cfg),
		newSealCmd(cfg),
		newReplayCmd(cfg),
		newInspectCmd(cfg),
		newStatsCmd(cfg),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			commit := Commit
			if commit == "none" {
				commit = common.CommitHash(commit)
			}
			fmt.Printf("evmio %s (commit %s, built %s)\n", Version, commit, BuildTime)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Default()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, common.Colorize(common.ColorRed, "Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
