package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notesctl",
		Short: "Operator tools for the lesson notes server",
		Long: `notesctl renders stored note documents offline and prepares the
secrets the LMS integration needs.`,
		SilenceUsage: true,
	}

	root.AddCommand(renderCmd())
	root.AddCommand(blankCmd())
	root.AddCommand(hashKeyCmd())
	root.AddCommand(tokenCmd())

	return root
}

// readInput reads the named file, or stdin when the name is "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
