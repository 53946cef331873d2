package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ChenxingLi/evm-io-tracker/common"
	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/fetch"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/shard"
	"github.com/ChenxingLi/evm-io-tracker/telemetry"
	"github.com/ChenxingLi/evm-io-tracker/vmtrace"
	"github.com/spf13/cobra"
)

func newFetchCmd(cfg *config.Config) *cobra.Command {
	var startBlock uint64

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch block vmTraces from a node and write access log shards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tel := telemetry.NewNoOpTelemetryClient()
			if cfg.OTLPEndpoint != "" {
				t, err := telemetry.NewTelemetryClient(ctx, cfg.OTLPEndpoint)
				if err != nil {
					return err
				}
				tel = t
				fmt.Printf("Telemetry enabled: %s\n", cfg.OTLPEndpoint)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tel.Close(shutdownCtx); err != nil {
					log.Warn(log.CLIMonitoring, "Telemetry shutdown failed", "err", err)
				}
			}()

			client, err := fetch.Dial(ctx, cfg.NodeURL)
			if err != nil {
				return err
			}
			defer client.Close()

			fetcher := fetch.NewFetcher(client, vmtrace.NewWalker(cfg.MaxCallDepth), tel, cfg.Concurrency)
			for b := 0; b < cfg.Batches; b++ {
				start := startBlock + uint64(b)*uint64(cfg.BatchSize)
				res, err := fetcher.FetchBatch(ctx, start, cfg.BatchSize)
				if err != nil {
					return fmt.Errorf("batch starting at %d: %w", start, err)
				}
				path, err := shard.Write(cfg.DataDir, res.Start, res.Blocks)
				if err != nil {
					return err
				}
				fmt.Println(common.Colorize(common.ColorGreen,
					fmt.Sprintf("Block number %d to %d: %d items (%v)", res.Start, res.End(), res.Items, res.Elapsed)))
				log.Debug(log.CLIMonitoring, "Shard written", "path", path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.NodeURL, "node-url", cfg.NodeURL, "node JSON-RPC endpoint (http, https, ws or wss)")
	f.Uint64Var(&startBlock, "start-block", 0, "first block to fetch")
	f.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "blocks per batch and per shard file")
	f.IntVar(&cfg.Batches, "batches", cfg.Batches, "number of consecutive batches to fetch")
	f.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "blocks in flight per batch (0 = whole batch)")
	f.IntVar(&cfg.MaxCallDepth, "max-call-depth", cfg.MaxCallDepth, "call frame limit while walking traces")
	f.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for shard files")
	f.StringVar(&cfg.OTLPEndpoint, "otlp", cfg.OTLPEndpoint, "OTLP/HTTP endpoint for fetch spans")
	_ = cmd.MarkFlagRequired("start-block")
	return cmd
}
