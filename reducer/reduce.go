package reducer

import (
	"context"
	"time"

	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/types"
)

type Options struct {
	Seed    uint64
	Workers int
}

// Result bundles both artifacts with the figures reported after a seal.
type Result struct {
	Snapshot *Snapshot
	Init     []types.InitialStateEntry
	Workload types.Workload

	Blocks int
	Txs    int
	Ops    int
}

// Reduce runs the global pass and the per-block pass over l.
func Reduce(ctx context.Context, l types.FullAccessLog, opts Options) (*Result, error) {
	start := time.Now()
	txs, ops := l.Counts()
	res := &Result{Blocks: len(l), Txs: txs, Ops: ops}

	res.Snapshot = BuildSnapshot(l)
	res.Init = res.Snapshot.Shuffled(NewRand(opts.Seed))
	log.Debug(log.ReducerMonitoring, "Snapshot built", "touched", res.Snapshot.Touched(), "init", len(res.Init), "elapsed", time.Since(start))

	workload, err := Compact(ctx, l, opts.Workers)
	if err != nil {
		return nil, err
	}
	res.Workload = workload
	r, w := workload.Counts()
	log.Debug(log.ReducerMonitoring, "Workload compacted", "reads", r, "writes", w, "elapsed", time.Since(start))
	return res, nil
}
