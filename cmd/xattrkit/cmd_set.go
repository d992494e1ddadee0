package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func newSetCommand() *cobra.Command {
	var opts SetOptions

	cmd := &cobra.Command{
		Use:   "set [flags] path name [value]",
		Short: "Set the value of an attribute",
		Long: `
The "set" command stores value as the attribute name of path. Values starting
with "0x" are hex encoded. Use --value-file to read the value from a file, or
from standard input with "--value-file -". Without a value, the attribute is
set to the empty value.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// SetOptions collects all options for the set command.
type SetOptions struct {
	Create    bool
	Replace   bool
	Hex       bool
	ValueFile string
}

func (opts *SetOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVar(&opts.Create, "create", false, "fail if the attribute already exists")
	f.BoolVar(&opts.Replace, "replace", false, "fail if the attribute does not exist")
	f.BoolVarP(&opts.Hex, "hex", "x", false, "the value is hex encoded")
	f.StringVar(&opts.ValueFile, "value-file", "", "read the value from `file` (use - for stdin)")
}

func (opts SetOptions) flags() xattr.Flags {
	var flags xattr.Flags
	if opts.Create {
		flags |= xattr.Create
	}
	if opts.Replace {
		flags |= xattr.Replace
	}
	return flags
}

func readValueFile(filename string) ([]byte, error) {
	if filename == "-" {
		buf, err := io.ReadAll(os.Stdin)
		return buf, errors.Wrap(err, "read stdin")
	}
	buf, err := os.ReadFile(filename)
	return buf, errors.WithStack(err)
}

func runSet(_ context.Context, opts SetOptions, gopts GlobalOptions, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.Fatal("wrong number of arguments, usage: set [flags] path name [value]")
	}
	if opts.Create && opts.Replace {
		return errors.Fatal("--create and --replace cannot be specified at the same time")
	}

	var value []byte
	switch {
	case opts.ValueFile != "" && len(args) == 3:
		return errors.Fatal("a value and --value-file cannot be specified at the same time")
	case opts.ValueFile != "":
		buf, err := readValueFile(opts.ValueFile)
		if err != nil {
			return errors.Fatalf("unable to read value: %v", err)
		}
		value = buf
	case len(args) == 3:
		buf, err := parseValue(args[2], opts.Hex)
		if err != nil {
			return errors.Fatalf("invalid value %q: %v", args[2], err)
		}
		value = buf
	default:
		value = []byte{}
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	path, name := args[0], args[1]
	if err := h.Set(path, name, value, gopts.Flags()|opts.flags()); err != nil {
		return err
	}
	Verbosef("set %v on %v (%d bytes)\n", name, path, len(value))
	return nil
}
