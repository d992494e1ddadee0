package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	godebug "runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/feature"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

// ErrNotFound is returned by the exists command if the attribute is not set.
var ErrNotFound = errors.New("attribute not found")

// ErrIncomplete is returned if some paths could not be processed. The
// problems have already been reported as warnings.
var ErrIncomplete = errors.New("at least one path could not be processed")

var cmdGroupDefault = "default"
var cmdGroupArchive = "archive"
var cmdGroupAdvanced = "advanced"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xattrkit",
		Short: "Inspect, modify and archive extended attributes",
		Long: `
xattrkit reads, writes, lists and removes extended attributes of files and
directories, and saves and restores the attributes of whole trees.
`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return globalOptions.PreRun()
		},
	}

	cmd.AddGroup(
		&cobra.Group{
			ID:    cmdGroupDefault,
			Title: "Available Commands:",
		},
		&cobra.Group{
			ID:    cmdGroupArchive,
			Title: "Archive Commands:",
		},
		&cobra.Group{
			ID:    cmdGroupAdvanced,
			Title: "Advanced Options:",
		},
	)

	globalOptions.AddFlags(cmd.PersistentFlags())

	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newCopyCommand(),
		newDumpCommand(),
		newExistsCommand(),
		newFeaturesCommand(),
		newGetCommand(),
		newListCommand(),
		newOptionsCommand(),
		newRestoreCommand(),
		newRmCommand(),
		newSetCommand(),
		newSizeCommand(),
		newVersionCommand(),
	)

	registerProfiling(cmd)

	return cmd
}

func tweakGoGC() {
	// lower GOGC from 100 to 50, unless it was manually overwritten by the user
	oldValue := godebug.SetGCPercent(50)
	if oldValue != 100 {
		godebug.SetGCPercent(oldValue)
	}
}

func printExitError(code int, message string) {
	if globalOptions.JSON {
		type jsonExitError struct {
			MessageType string `json:"message_type"` // exit_error
			Code        int    `json:"code"`
			Message     string `json:"message"`
		}

		jsonS := jsonExitError{
			MessageType: "exit_error",
			Code:        code,
			Message:     message,
		}

		err := json.NewEncoder(globalOptions.stderr).Encode(jsonS)
		if err != nil {
			Warnf("JSON encode failed: %v\n", err)
			return
		}
	} else {
		_, _ = fmt.Fprintf(globalOptions.stderr, "%v\n", message)
	}
}

// exitMessage returns the text printed for err. Errors from the attribute
// layer and fatal errors are printed as is, anything else with details.
func exitMessage(err error) string {
	var xerr *xattr.Error
	switch {
	case err == nil, err == ErrNotFound:
		return ""
	case errors.IsFatal(err):
		return err.Error()
	case errors.As(err, &xerr), err == ErrIncomplete:
		return fmt.Sprintf("Fatal: %v", err)
	default:
		return fmt.Sprintf("%+v", err)
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case err == ErrNotFound:
		return 2
	case err == ErrIncomplete:
		return 3
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func main() {
	tweakGoGC()

	err := feature.Flag.Apply(os.Getenv("XATTRKIT_FEATURES"), func(s string) {
		_, _ = fmt.Fprintln(os.Stderr, s)
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		Exit(1)
	}

	debug.Log("main %#v", os.Args)
	debug.Log("xattrkit %s compiled with %v on %v/%v",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	ctx := createGlobalContext()
	err = newRootCommand().ExecuteContext(ctx)
	if err == nil {
		err = ctx.Err()
	}

	debug.Log("xattr stats %+v", xattr.ReadStats())

	code := exitCode(err)
	if msg := exitMessage(err); msg != "" {
		printExitError(code, msg)
	}
	Exit(code)
}
