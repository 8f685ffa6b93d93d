// Command pcron is the scheduler daemon and its signal-sending client,
// bundled into one binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pcron",
		Short: "A periodic job scheduler with calendar, interval, and post-dependency triggers",
	}
	root.AddCommand(
		newRunCmd(),
		newDaemonCmd(),
		newReloadCmd(),
		newDumpCmd(),
		newStopCmd(),
		newValidateCmd(),
		newInitCmd(),
		newHistoryCmd(),
	)
	return root
}
