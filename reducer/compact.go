package reducer

import (
	"context"

	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

type keyGroup struct {
	key       types.StorageKey
	firstRead bool
	lastWrite *uint256.Int
}

// CompactBlock reduces one block to at most one read and one write per key.
// Transaction boundaries are dropped. A key gets a read task when its first
// access in the block is a read, and a write task carrying its last written
// value. Reads precede writes; both follow first-encounter key order.
func CompactBlock(block types.BlockAccessLog) types.BlockWorkload {
	index := make(map[types.StorageKey]int)
	var groups []keyGroup
	for _, tx := range block {
		for i := range tx {
			a := &tx[i]
			gi, ok := index[a.Key]
			if !ok {
				gi = len(groups)
				index[a.Key] = gi
				groups = append(groups, keyGroup{key: a.Key, firstRead: a.IsRead()})
			}
			if a.IsWrite() {
				groups[gi].lastWrite = &a.Value
			}
		}
	}

	out := make(types.BlockWorkload, 0, len(groups))
	for _, g := range groups {
		if g.firstRead {
			out = append(out, types.ReadTask(g.key.Digest()))
		}
	}
	for _, g := range groups {
		if g.lastWrite != nil {
			out = append(out, types.WriteTask(g.key.Digest(), g.lastWrite.Bytes32()))
		}
	}
	return out
}

// Compact runs CompactBlock over every block, up to workers at a time.
func Compact(ctx context.Context, l types.FullAccessLog, workers int) (types.Workload, error) {
	out := make(types.Workload, len(l))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range l {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = CompactBlock(l[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
