package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/xattrkit/xattrkit/internal/errors"
)

func newExistsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists [flags] path name",
		Short: "Check whether an attribute is set",
		Long: `
The "exists" command prints "true" if the attribute name is set on path and
"false" otherwise.

EXIT STATUS
===========

Exit status is 0 if the attribute exists.
Exit status is 1 if there was any error.
Exit status is 2 if the attribute does not exist.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExists(cmd.Context(), globalOptions, args)
		},
	}
	return cmd
}

func runExists(_ context.Context, gopts GlobalOptions, args []string) error {
	if len(args) != 2 {
		return errors.Fatal("wrong number of arguments, usage: exists [flags] path name")
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	found, err := h.Exists(args[0], args[1], gopts.Flags())
	if err != nil {
		return err
	}

	if gopts.JSON {
		err = json.NewEncoder(globalOptions.stdout).Encode(struct {
			Path   string `json:"path"`
			Name   string `json:"name"`
			Exists bool   `json:"exists"`
		}{args[0], args[1], found})
		if err != nil {
			return err
		}
	} else if gopts.verbosity > 0 {
		Printf("%v\n", found)
	}

	if !found {
		return ErrNotFound
	}
	return nil
}
