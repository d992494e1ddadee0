package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/filter"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func newListCommand() *cobra.Command {
	var opts ListOptions

	cmd := &cobra.Command{
		Use:     "list [flags] path [path...]",
		Aliases: []string{"ls"},
		Short:   "List attribute names",
		Long: `
The "list" command prints the attribute names of each path in the order the
operating system reports them. With --long, the size of each value is printed
in front of the name. With --values, each name is followed by its value, in
quotes for text and hex encoded otherwise.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// ListOptions collects all options for the list command.
type ListOptions struct {
	Long   bool
	Values bool
	filter.NameFilterOptions
}

func (opts *ListOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Long, "long", "l", false, "print the size of each value")
	f.BoolVarP(&opts.Values, "values", "d", false, "print the value of each attribute")
	opts.NameFilterOptions.Add(f)
}

type listEntryJSON struct {
	Name  string `json:"name"`
	Size  *int64 `json:"size,omitempty"`
	Value []byte `json:"value,omitempty"`
}

type listJSON struct {
	Path  string          `json:"path"`
	Attrs []listEntryJSON `json:"attrs"`
}

type listEntry struct {
	name  string
	size  int64
	value []byte
}

// listPath returns the selected attributes of path. Attributes removed
// between listing and reading their size are skipped.
func listPath(h *xattr.Handle, path string, flags xattr.Flags, opts ListOptions, selected func(string) bool) ([]listEntry, error) {
	names, err := h.List(path, flags)
	if err != nil {
		return nil, err
	}

	entries := make([]listEntry, 0, len(names))
	for _, name := range names {
		if selected != nil && !selected(name) {
			continue
		}
		entry := listEntry{name: name, size: -1}
		switch {
		case opts.Values:
			value, err := h.Get(path, name, flags)
			if xattr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			entry.value = value
			entry.size = int64(len(value))
		case opts.Long:
			size, err := h.Size(path, name, flags)
			if xattr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			entry.size = size
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func runList(ctx context.Context, opts ListOptions, gopts GlobalOptions, args []string) error {
	if len(args) == 0 {
		return errors.Fatal("no path given, usage: list [flags] path [path...]")
	}

	selected, err := opts.NameFilterOptions.Build(Warnf)
	if err != nil {
		return err
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(globalOptions.stdout)
	for i, path := range args {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		entries, err := listPath(h, path, gopts.Flags(), opts, selected)
		if err != nil {
			return err
		}

		if gopts.JSON {
			out := listJSON{Path: path, Attrs: make([]listEntryJSON, 0, len(entries))}
			for _, e := range entries {
				item := listEntryJSON{Name: e.name}
				if opts.Long {
					size := e.size
					item.Size = &size
				}
				if opts.Values {
					item.Value = e.value
				}
				out.Attrs = append(out.Attrs, item)
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
			continue
		}

		if len(args) > 1 {
			if i > 0 {
				Println()
			}
			Printf("# file: %v\n", path)
		}
		for _, e := range entries {
			line := e.name
			if opts.Values {
				line += "=" + quoteValue(e.value)
			}
			if opts.Long {
				Printf("%10d  %s\n", e.size, line)
			} else {
				Println(line)
			}
		}
	}
	return nil
}
