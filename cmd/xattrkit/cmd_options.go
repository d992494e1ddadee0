package main

import (
	"github.com/spf13/cobra"

	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/options"
)

func newOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print list of extended options",
		Long: `
The "options" command prints a list of extended options. They are set with
"-o key=value" or the comma separated $XATTRKIT_OPTIONS.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupAdvanced,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.Fatal("the options command expects no arguments")
			}
			printOptions(options.List())
			return nil
		},
	}
	return cmd
}

func printOptions(list []options.Help) {
	Printf("All Extended Options:\n")
	var maxLen int
	for _, opt := range list {
		if l := len(opt.Key()); l > maxLen {
			maxLen = l
		}
	}
	for _, opt := range list {
		Printf("  %*s  %s\n", -maxLen, opt.Key(), opt.Text)
	}
}
