// Command warmsched runs the warm-pool FaaS scheduler, either as an HTTP
// daemon backed by Docker containers or as a deterministic simulation that
// compares the LCS and MRU selection strategies.
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
		Use:   "warmsched",
		Short: "Warm-pool scheduler for FaaS containers",
	}
	root.PersistentFlags().String("config", "", "path to a JSON config file")
	root.AddCommand(daemonCmd())
	root.AddCommand(simulateCmd())
	return root
}
