package main

import (
	"fmt"
	"path/filepath"

	"github.com/ChenxingLi/evm-io-tracker/codec"
	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/reducer"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/spf13/cobra"
)

const (
	initFile = "real_trace.init"
	dataFile = "real_trace.data"
)

func newSealCmd(cfg *config.Config) *cobra.Command {
	var input string
	var hot int

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Reduce a combined access log into initial state and workload artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var accessLog types.FullAccessLog
			if err := codec.ReadFile(input, codec.KindAccessLog, &accessLog); err != nil {
				return err
			}
			res, err := reducer.Reduce(cmd.Context(), accessLog, reducer.Options{Seed: cfg.Seed, Workers: cfg.Workers})
			if err != nil {
				return err
			}
			fmt.Printf("Blocks %d, txs %d, ops %d\n", res.Blocks, res.Txs, res.Ops)
			fmt.Printf("Touched set %d, init set %d\n", res.Snapshot.Touched(), len(res.Init))
			reads, writes := res.Workload.Counts()
			fmt.Printf("Final task %d r %d w\n", reads, writes)

			if hot > 0 {
				for i, s := range res.Snapshot.HotKeys(hot) {
					fmt.Printf("%3d. %s %d r %d w\n", i+1, s.Key, s.Reads, s.Writes)
				}
			}

			if err := codec.WriteFile(filepath.Join(cfg.OutputDir, initFile), codec.KindInitialState, res.Init); err != nil {
				return err
			}
			return codec.WriteFile(filepath.Join(cfg.OutputDir, dataFile), codec.KindWorkload, res.Workload)
		},
	}

	f := cmd.Flags()
	f.StringVar(&input, "input", "", "combined access log")
	f.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory for "+initFile+" and "+dataFile)
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle seed for the initial state (0 = time based)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel block compaction workers (0 = unlimited)")
	f.IntVar(&hot, "hot", 0, "print the N most accessed keys")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
