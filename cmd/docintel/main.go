package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errPartial marks a run that produced a result with failed pages.
var errPartial = errors.New("document processed with page errors")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errPartial) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docintel",
		Short:         "Extract structured text, contacts and keyword summaries from scanned documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newProcessCommand())
	return cmd
}
