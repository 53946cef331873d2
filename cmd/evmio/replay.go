package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ChenxingLi/evm-io-tracker/bench"
	"github.com/ChenxingLi/evm-io-tracker/codec"
	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/storage"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/spf13/cobra"
)

// artifactPaths fills in real_trace.init / real_trace.data under dir for
// whichever path was left empty.
func artifactPaths(dir, initPath, dataPath string) (string, string) {
	if initPath == "" {
		initPath = filepath.Join(dir, initFile)
	}
	if dataPath == "" {
		dataPath = filepath.Join(dir, dataFile)
	}
	return initPath, dataPath
}

func loadArtifacts(initPath, dataPath string) ([]types.InitialStateEntry, types.Workload, error) {
	var init []types.InitialStateEntry
	if err := codec.ReadFile(initPath, codec.KindInitialState, &init); err != nil {
		return nil, nil, err
	}
	var workload types.Workload
	if err := codec.ReadFile(dataPath, codec.KindWorkload, &workload); err != nil {
		return nil, nil, err
	}
	return init, workload, nil
}

func newReplayCmd(cfg *config.Config) *cobra.Command {
	var initPath, dataPath, reportPath string
	var syncWrites bool

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a sealed workload against LevelDB and report block timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			initPath, dataPath := artifactPaths(cfg.OutputDir, initPath, dataPath)
			init, workload, err := loadArtifacts(initPath, dataPath)
			if err != nil {
				return err
			}

			store, err := storage.NewPersistenceStore(cfg.DBPath, &storage.Options{
				CacheMB:    cfg.DBCacheMB,
				BloomBits:  cfg.DBBloomBits,
				SyncWrites: syncWrites,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Warn(log.CLIMonitoring, "Store close failed", "err", err)
				}
			}()

			began := time.Now()
			stats, err := bench.Replay(cmd.Context(), store, init, workload)
			if err != nil {
				return err
			}
			total := time.Since(began)
			fmt.Println(stats.DumpMetrics())

			if reportPath != "" {
				if err := bench.WriteJSONReport(reportPath, stats.GenerateJSONReport(dataPath, total)); err != nil {
					return err
				}
				log.Info(log.CLIMonitoring, "Replay report written", "path", reportPath)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.OutputDir, "dir", cfg.OutputDir, "directory holding the sealed artifacts")
	f.StringVar(&initPath, "init", "", "initial state artifact (default <dir>/"+initFile+")")
	f.StringVar(&dataPath, "data", "", "workload artifact (default <dir>/"+dataFile+")")
	f.StringVar(&cfg.DBPath, "db", cfg.DBPath, "LevelDB directory (empty = in memory)")
	f.IntVar(&cfg.DBCacheMB, "cache", cfg.DBCacheMB, "LevelDB block cache in MiB")
	f.IntVar(&cfg.DBBloomBits, "bloom", cfg.DBBloomBits, "bloom filter bits per key (0 = off)")
	f.BoolVar(&syncWrites, "sync", false, "fsync every block's write batch")
	f.StringVar(&reportPath, "report", "", "write a JSON report to this path")
	return cmd
}
