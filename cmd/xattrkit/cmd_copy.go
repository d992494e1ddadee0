package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/filter"
)

func newCopyCommand() *cobra.Command {
	var opts CopyOptions

	cmd := &cobra.Command{
		Use:   "copy [flags] source destination",
		Short: "Copy attributes from one file to another",
		Long: `
The "copy" command makes the selected attributes of destination equal to
those of source. Selected attributes of destination which source does not
have are removed.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// CopyOptions collects all options for the copy command.
type CopyOptions struct {
	filter.NameFilterOptions
}

func (opts *CopyOptions) AddFlags(f *pflag.FlagSet) {
	opts.NameFilterOptions.Add(f)
}

func runCopy(_ context.Context, opts CopyOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 2 {
		return errors.Fatal("wrong number of arguments, usage: copy [flags] source destination")
	}

	selected, err := opts.NameFilterOptions.Build(Warnf)
	if err != nil {
		return err
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	if err := h.Copy(args[0], args[1], gopts.Flags(), selected); err != nil {
		return err
	}
	Verbosef("copied attributes from %v to %v\n", args[0], args[1])
	return nil
}
