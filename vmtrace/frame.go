package vmtrace

import (
	"fmt"

	evmcommon "github.com/ChenxingLi/evm-io-tracker/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/xlab/treeprint"
)

// CallFrame summarizes one walked frame. The root frame has Op STOP.
type CallFrame struct {
	Op       vm.OpCode
	Pc       uint64
	Contract common.Address
	Depth    int
	Steps    int
	Skipped  int
	Unknown  int
	Reads    int
	Writes   int
	Children []*CallFrame
}

// Frames counts this frame and all its descendants.
func (c *CallFrame) Frames() int {
	n := 1
	for _, child := range c.Children {
		n += child.Frames()
	}
	return n
}

func (c *CallFrame) label() string {
	head := "tx"
	if c.Depth > 0 {
		head = fmt.Sprintf("%s@%d", c.Op, c.Pc)
	}
	return fmt.Sprintf("%s %s steps: %d, %s, %s",
		evmcommon.Colorize(evmcommon.ColorGreen, head),
		evmcommon.Colorize(evmcommon.ColorGray, c.Contract.Hex()),
		c.Steps,
		evmcommon.Colorize(evmcommon.ColorYellow, fmt.Sprintf("reads: %d", c.Reads)),
		evmcommon.Colorize(evmcommon.ColorRed, fmt.Sprintf("writes: %d", c.Writes)),
	)
}

func (c *CallFrame) addTo(tree treeprint.Tree) {
	branch := tree.AddBranch(c.label())
	for _, child := range c.Children {
		child.addTo(branch)
	}
}

func (c *CallFrame) ToTree() treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(c.label())
	for _, child := range c.Children {
		child.addTo(tree)
	}
	return tree
}
