package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/errors"
)

func newRmCommand() *cobra.Command {
	var opts RmOptions

	cmd := &cobra.Command{
		Use:     "rm [flags] path name [name...]",
		Aliases: []string{"remove"},
		Short:   "Remove attributes",
		Long: `
The "rm" command removes the named attributes from path. With --force,
attributes that do not exist, and a path that does not exist, are ignored.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// RmOptions collects all options for the rm command.
type RmOptions struct {
	Force bool
}

func (opts *RmOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Force, "force", "f", false, "ignore attributes and paths that do not exist")
}

func runRm(ctx context.Context, opts RmOptions, gopts GlobalOptions, args []string) error {
	if len(args) < 2 {
		return errors.Fatal("wrong number of arguments, usage: rm [flags] path name [name...]")
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	path := args[0]
	for _, name := range args[1:] {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.Remove(path, name, gopts.Flags(), opts.Force); err != nil {
			return err
		}
		Verbosef("removed %v from %v\n", name, path)
	}
	return nil
}
