package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/telemetry"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ChenxingLi/evm-io-tracker/vmtrace"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

type Fetcher struct {
	client      *TraceClient
	walker      *vmtrace.Walker
	telemetry   *telemetry.TelemetryClient
	concurrency int
}

// NewFetcher builds a fetcher. concurrency <= 0 means one request per block
// of a batch at once.
func NewFetcher(client RPCClient, walker *vmtrace.Walker, tel *telemetry.TelemetryClient, concurrency int) *Fetcher {
	if walker == nil {
		walker = vmtrace.NewWalker(vmtrace.DefaultMaxDepth)
	}
	if tel == nil {
		tel = telemetry.NewNoOpTelemetryClient()
	}
	return &Fetcher{client: NewTraceClient(client), walker: walker, telemetry: tel, concurrency: concurrency}
}

// actingContract picks the account whose storage the top-level frame uses.
// ok is false when the receipt names neither a recipient nor a created contract.
func actingContract(r *Receipt) (common.Address, bool, error) {
	switch {
	case r.To != nil && r.ContractAddress != nil:
		return common.Address{}, false, fmt.Errorf("%w: tx %s", ioerrors.ErrAmbiguousReceiptTarget, r.TransactionHash.Hex())
	case r.To != nil:
		return *r.To, true, nil
	case r.ContractAddress != nil:
		return *r.ContractAddress, true, nil
	}
	return common.Address{}, false, nil
}

// FetchBlock walks every traced transaction of one block.
func (f *Fetcher) FetchBlock(ctx context.Context, number uint64) (_ types.BlockAccessLog, err error) {
	ctx, span := f.telemetry.StartSpan(ctx, "fetch.block", attribute.Int64("block", int64(number)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	traces, err := f.client.ReplayBlockTransactions(ctx, number)
	if err != nil {
		return nil, err
	}
	receipts, err := f.client.BlockReceipts(ctx, number)
	if err != nil {
		return nil, err
	}
	if len(traces) != len(receipts) {
		return nil, fmt.Errorf("%w: block %d has %d traces and %d receipts", ioerrors.ErrReceiptTraceMismatch, number, len(traces), len(receipts))
	}

	block := make(types.BlockAccessLog, 0, len(traces))
	for i := range traces {
		tr, rc := &traces[i], &receipts[i]
		if tr.TransactionHash != nil && rc.TransactionHash != (common.Hash{}) && *tr.TransactionHash != rc.TransactionHash {
			return nil, fmt.Errorf("%w: block %d tx %d trace %s receipt %s", ioerrors.ErrReceiptTraceMismatch, number, i, tr.TransactionHash.Hex(), rc.TransactionHash.Hex())
		}
		contract, ok, err := actingContract(rc)
		if err != nil {
			return nil, fmt.Errorf("block %d tx %d: %w", number, i, err)
		}
		if !ok || tr.VMTrace == nil {
			log.Trace(log.FetchMonitoring, "Transaction skipped", "block", number, "tx", i)
			continue
		}
		accesses, err := f.walker.Walk(tr.VMTrace, contract)
		if err != nil {
			return nil, fmt.Errorf("block %d tx %d: %w", number, i, err)
		}
		block = append(block, accesses)
	}
	span.SetAttributes(attribute.Int("txs", len(block)), attribute.Int("ops", block.Ops()))
	return block, nil
}

// BatchResult is one fetched run of consecutive blocks.
type BatchResult struct {
	Start   uint64
	Blocks  types.FullAccessLog
	Items   int
	Elapsed time.Duration
}

// End is the last block number in the batch.
func (b *BatchResult) End() uint64 {
	return b.Start + uint64(len(b.Blocks)) - 1
}

// FetchBatch fetches size consecutive blocks starting at start. Blocks are
// fetched concurrently and joined before returning; any failure fails the batch.
func (f *Fetcher) FetchBatch(ctx context.Context, start uint64, size int) (_ *BatchResult, err error) {
	began := time.Now()
	ctx, span := f.telemetry.StartSpan(ctx, "fetch.batch", attribute.Int64("start", int64(start)), attribute.Int("size", size))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	blocks := make(types.FullAccessLog, size)
	g, ctx := errgroup.WithContext(ctx)
	limit := f.concurrency
	if limit <= 0 {
		limit = size
	}
	g.SetLimit(limit)
	for i := 0; i < size; i++ {
		number := start + uint64(i)
		g.Go(func() error {
			block, err := f.FetchBlock(ctx, number)
			if err != nil {
				return err
			}
			blocks[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &BatchResult{Start: start, Blocks: blocks, Elapsed: time.Since(began)}
	_, res.Items = blocks.Counts()
	log.Debug(log.FetchMonitoring, "Batch fetched", "start", start, "size", size, "items", res.Items, "elapsed", res.Elapsed)
	return res, nil
}
