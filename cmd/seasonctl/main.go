// Command seasonctl costs crop plan snapshots and converts price sheets offline.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seasonplan/pkg/logging"
)

type app struct {
	out     io.Writer
	logger  *zap.Logger
	verbose bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "seasonctl",
		Short:         "Season input program costing tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.verbose {
				return nil
			}
			l, err := logging.New("debug", true)
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(a.summaryCmd(), a.convertCmd(), a.pricebookCmd())
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
