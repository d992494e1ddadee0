package main

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/errors"
)

func newGetCommand() *cobra.Command {
	var opts GetOptions

	cmd := &cobra.Command{
		Use:   "get [flags] path name",
		Short: "Print the value of an attribute",
		Long: `
The "get" command prints the value of the attribute name of path. Text values
are printed followed by a newline. Binary values are shown as a hex dump when
printing to a terminal and written unchanged otherwise.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// GetOptions collects all options for the get command.
type GetOptions struct {
	Hex bool
	Raw bool
}

func (opts *GetOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Hex, "hex", "x", false, "print the value as a hex dump")
	f.BoolVar(&opts.Raw, "raw", false, "write the value unchanged")
}

type getJSON struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Value []byte `json:"value"`
}

func runGet(_ context.Context, opts GetOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 2 {
		return errors.Fatal("wrong number of arguments, usage: get [flags] path name")
	}
	if opts.Hex && opts.Raw {
		return errors.Fatal("--hex and --raw cannot be specified at the same time")
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	path, name := args[0], args[1]
	value, err := h.Get(path, name, gopts.Flags())
	if err != nil {
		return err
	}

	switch {
	case gopts.JSON:
		return json.NewEncoder(globalOptions.stdout).Encode(getJSON{Path: path, Name: name, Value: value})
	case opts.Raw:
		Printf("%s", value)
	case opts.Hex:
		Printf("%s", hex.Dump(value))
	case isText(value):
		Printf("%s\n", textValue(value))
	case stdoutIsTerminal():
		Printf("%s", hex.Dump(value))
	default:
		Printf("%s", value)
	}
	return nil
}
