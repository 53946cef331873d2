package main

import (
	"fmt"
	"os"

	"github.com/ChenxingLi/evm-io-tracker/bench"
	"github.com/ChenxingLi/evm-io-tracker/codec"
	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/report"
	"github.com/ChenxingLi/evm-io-tracker/storage"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/spf13/cobra"
)

func newStatsCmd(cfg *config.Config) *cobra.Command {
	var initPath, dataPath, outPath, serveAddr string
	var firstBlock int
	var replay bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Chart per-block read and write tasks of a sealed workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			initPath, dataPath := artifactPaths(cfg.OutputDir, initPath, dataPath)

			var stats *bench.BenchmarkStats
			var workload types.Workload
			if replay {
				init, w, err := loadArtifacts(initPath, dataPath)
				if err != nil {
					return err
				}
				workload = w
				store, err := storage.NewMemoryPersistenceStore()
				if err != nil {
					return err
				}
				defer store.Close()
				if stats, err = bench.Replay(cmd.Context(), store, init, workload); err != nil {
					return err
				}
			} else if err := codec.ReadFile(dataPath, codec.KindWorkload, &workload); err != nil {
				return err
			}

			summary := report.Summarize(workload, firstBlock)
			reads, writes := workload.Counts()
			fmt.Printf("Blocks %d, reads %d, writes %d\n", len(workload), reads, writes)

			if serveAddr != "" {
				return report.Serve(serveAddr, summary, stats)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.Render(f, summary, stats); err != nil {
				return err
			}
			fmt.Printf("Chart written to %s\n", outPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.OutputDir, "dir", cfg.OutputDir, "directory holding the sealed artifacts")
	f.StringVar(&dataPath, "data", "", "workload artifact (default <dir>/"+dataFile+")")
	f.StringVar(&initPath, "init", "", "initial state artifact, used with --replay")
	f.IntVar(&firstBlock, "first-block", 0, "block number of the first workload entry, for axis labels")
	f.StringVar(&outPath, "out", "workload.html", "HTML output file")
	f.StringVar(&serveAddr, "serve", "", "serve the chart on this address instead of writing a file")
	f.BoolVar(&replay, "replay", false, "also replay in memory and chart block timings")
	return cmd
}
