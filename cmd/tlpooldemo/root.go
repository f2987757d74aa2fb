package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tlpooldemo",
		Short: "Exercises the per-thread object pool across several OS threads",
	}

	cmd.AddCommand(newRunCmd())
	return cmd
}
