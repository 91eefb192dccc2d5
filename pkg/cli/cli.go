// Package cli implements the generate, prepare and run commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mmapbench/pkg/common"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfig      = 2
	exitConsistency = 3
)

// ExitCode classifies err into a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, common.ErrConfig):
		return exitConfig
	case errors.Is(err, common.ErrConsistency):
		return exitConsistency
	default:
		return exitFailure
	}
}

// Main runs cmd with the process arguments and exits with the status that
// matches its outcome. Errors are written to stderr.
func Main(cmd *cobra.Command) {
	os.Exit(Execute(cmd, os.Args[1:], os.Stderr))
}

// Execute runs cmd with args and returns the exit status. A failure is
// reported on stderr together with any hint attached to the error.
func Execute(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(stderr, "HINT: %s\n", hint)
		}
	}
	return ExitCode(err)
}

// newCommand applies the settings shared by every command.
func newCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return common.ConfigError("unexpected arguments %q", args)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Mark(err, common.ErrConfig)
	})
	return cmd
}

// changed reports whether the flag name was set on the command line.
func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
