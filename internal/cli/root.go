package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rentald",
		Short: "Single-property rental reservation engine: availability, pricing and checkout arbitration",
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSyncCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
