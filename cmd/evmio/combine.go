package main

import (
	"fmt"

	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/shard"
	"github.com/spf13/cobra"
)

func newCombineCmd(cfg *config.Config) *cobra.Command {
	var startBlock, endBlock uint64

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Merge contiguous shard files into one access log",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r shard.Range
			if cmd.Flags().Changed("start-block") {
				r.Start = &startBlock
			}
			if cmd.Flags().Changed("end-block") {
				r.End = &endBlock
			}
			path, n, err := shard.Combine(cfg.DataDir, cfg.OutputDir, r)
			if err != nil {
				return err
			}
			fmt.Printf("Combined %d blocks into %s\n", n, path)
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&startBlock, "start-block", 0, "first block to keep (inclusive)")
	f.Uint64Var(&endBlock, "end-block", 0, "block to stop at (exclusive)")
	f.StringVar(&cfg.DataDir, "path", cfg.DataDir, "directory holding <start>_<len>.trace shards")
	f.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for the combined file")
	return cmd
}
