package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/feature"
)

func newFeaturesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print list of feature flags",
		Long: `
The "features" command prints a list of supported feature flags.

To pass feature flags to xattrkit, set the environment variable
"XATTRKIT_FEATURES" to a comma-separated list of feature flags to enable or
disable. The syntax is "<name>=<true|false>". A feature can also be enabled
by just specifying its name, for example "XATTRKIT_FEATURES=size-race-backoff".

Alpha features are disabled by default and may change in arbitrary ways. Beta
features are enabled by default. Stable features are always enabled, and
deprecated features are always disabled.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		GroupID:           cmdGroupAdvanced,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.Fatal("the feature command expects no arguments")
			}
			return printFeatures(feature.Flag.List())
		},
	}
	return cmd
}

func printFeatures(flags []feature.Help) error {
	Printf("All Feature Flags:\n")

	tab := tabwriter.NewWriter(globalOptions.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tab, "Name\tType\tDefault\tDescription")
	for _, flag := range flags {
		_, _ = fmt.Fprintf(tab, "%v\t%v\t%v\t%v\n", flag.Name, flag.Type, flag.Default, flag.Description)
	}
	return errors.WithStack(tab.Flush())
}
