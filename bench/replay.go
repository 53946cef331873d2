package bench

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/storage"
	"github.com/ChenxingLi/evm-io-tracker/types"
)

// Replay seeds store with init and then applies workload one block at a time.
func Replay(ctx context.Context, store *storage.PersistenceStore, init []types.InitialStateEntry, workload types.Workload) (*BenchmarkStats, error) {
	stats := &BenchmarkStats{InitEntries: len(init)}

	start := time.Now()
	if err := store.Seed(init, 0); err != nil {
		return nil, err
	}
	stats.SeedTime = time.Since(start)
	log.Info(log.ReplayMonitoring, "Initial state seeded", "entries", len(init), "elapsed", stats.SeedTime)

	for i, block := range workload {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		blockStart := time.Now()
		res, err := store.Apply(block)
		if err != nil {
			return stats, err
		}
		elapsed := time.Since(blockStart)
		stats.AddResult(BlockResult{Block: i, Reads: res.Reads, Hits: res.Hits, Writes: res.Writes, Duration: elapsed})
		log.Debug(log.ReplayMonitoring, "Block replayed", "block", i, "reads", res.Reads, "writes", res.Writes, "elapsed", elapsed)
	}
	return stats, nil
}

// WriteJSONReport stores report as indented JSON.
func WriteJSONReport(path string, report *JSONReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
