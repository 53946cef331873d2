package main

import (
	"fmt"
	"os"

	"github.com/ChenxingLi/evm-io-tracker/config"
	"github.com/ChenxingLi/evm-io-tracker/vmtrace"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func newInspectCmd(cfg *config.Config) *cobra.Command {
	var contract string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "inspect <trace.json>",
		Short: "Walk one transaction trace and print its call frames and storage accesses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(contract) {
				return fmt.Errorf("invalid --contract address %q", contract)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			trace, err := vmtrace.ParseTransactionTrace(data)
			if err != nil {
				return err
			}
			root, accesses, err := vmtrace.NewWalker(cfg.MaxCallDepth).WalkTree(trace, common.HexToAddress(contract))
			if err != nil {
				return err
			}
			fmt.Print(root.ToTree().String())
			fmt.Printf("%d frames, %d storage accesses\n", root.Frames(), len(accesses))
			if !quiet {
				for i, a := range accesses {
					fmt.Printf("%4d %s\n", i, a)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&contract, "contract", "", "address whose storage the top-level frame uses")
	f.IntVar(&cfg.MaxCallDepth, "max-call-depth", cfg.MaxCallDepth, "call frame limit")
	f.BoolVarP(&quiet, "quiet", "q", false, "only print the frame tree")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}
