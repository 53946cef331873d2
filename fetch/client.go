// Package fetch retrieves block traces and receipts from a node and walks
// them into per-block access logs.
package fetch

import (
	"context"
	"fmt"

	"github.com/ChenxingLi/evm-io-tracker/vmtrace"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCClient is the interface for making RPC calls. *rpc.Client satisfies it.
type RPCClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Receipt keeps the receipt fields needed to attribute a transaction.
type Receipt struct {
	TransactionHash common.Hash     `json:"transactionHash"`
	To              *common.Address `json:"to"`
	ContractAddress *common.Address `json:"contractAddress"`
}

// TraceClient wraps the trace and receipt endpoints of an archive node.
type TraceClient struct {
	client RPCClient
}

func NewTraceClient(client RPCClient) *TraceClient {
	return &TraceClient{client: client}
}

// Dial connects over HTTP(S) or WebSocket depending on the URL scheme.
func Dial(ctx context.Context, url string) (*rpc.Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return c, nil
}

// ReplayBlockTransactions calls trace_replayBlockTransactions with vmTrace only.
func (c *TraceClient) ReplayBlockTransactions(ctx context.Context, number uint64) ([]vmtrace.TransactionTrace, error) {
	var result []vmtrace.TransactionTrace
	if err := c.client.CallContext(ctx, &result, "trace_replayBlockTransactions", hexutil.Uint64(number), []string{"vmTrace"}); err != nil {
		return nil, fmt.Errorf("trace_replayBlockTransactions %d: %w", number, err)
	}
	return result, nil
}

func (c *TraceClient) BlockReceipts(ctx context.Context, number uint64) ([]Receipt, error) {
	var result []Receipt
	if err := c.client.CallContext(ctx, &result, "eth_getBlockReceipts", hexutil.Uint64(number)); err != nil {
		return nil, fmt.Errorf("eth_getBlockReceipts %d: %w", number, err)
	}
	return result, nil
}
