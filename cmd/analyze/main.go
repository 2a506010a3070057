package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smartnotes/note-analyzer/internal/analysis"
)

// newRootCmd builds the analyzer command for the given note arguments. The
// arguments never reach cobra's command lookup, so texts such as "--help",
// "completion" or "__complete" are analyzed like any other.
func newRootCmd(out io.Writer, args []string) *cobra.Command {
	text := append([]string{}, args...)

	cmd := &cobra.Command{
		Use:                "note-analyze [text]",
		Short:              "Summarize a note and extract its keywords as one JSON line",
		Args:               cobra.NoArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := analysis.New(analysis.DefaultOptions()).AnalyzeArgs(text)
			_, err := result.WriteTo(out)
			return err
		},
	}
	// A nil slice would make cobra fall back to os.Args.
	cmd.SetArgs([]string{})

	return cmd
}

func main() {
	// The host reads stdout only; keep stderr silent.
	zerolog.SetGlobalLevel(zerolog.Disabled)

	// Errors are reported as JSON on stdout; the exit code is always 0.
	_ = newRootCmd(os.Stdout, os.Args[1:]).Execute()
}
