package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const cliVersion = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "postfeed",
		Short:        "Serve posts merged with their authors and comments",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd(), newCacheCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postfeed version %s\n", cliVersion)
		},
	}
}
