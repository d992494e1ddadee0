package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/xattrkit/xattrkit/internal/errors"
)

func newSizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size [flags] path name",
		Short: "Print the size of an attribute value",
		Long: `
The "size" command prints the size in bytes of the value of the attribute
name of path, without reading the value.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSize(cmd.Context(), globalOptions, args)
		},
	}
	return cmd
}

func runSize(_ context.Context, gopts GlobalOptions, args []string) error {
	if len(args) != 2 {
		return errors.Fatal("wrong number of arguments, usage: size [flags] path name")
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	size, err := h.Size(args[0], args[1], gopts.Flags())
	if err != nil {
		return err
	}

	if gopts.JSON {
		return json.NewEncoder(globalOptions.stdout).Encode(struct {
			Path string `json:"path"`
			Name string `json:"name"`
			Size int64  `json:"size"`
		}{args[0], args[1], size})
	}
	Printf("%d\n", size)
	return nil
}
