package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/dump"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/filter"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func newRestoreCommand() *cobra.Command {
	var opts RestoreOptions

	cmd := &cobra.Command{
		Use:   "restore [flags] archive",
		Short: "Apply the attributes saved in an archive",
		Long: `
The "restore" command applies the attributes stored in an archive created by
the "dump" command. For every path in the archive, the selected attributes
are set to the stored values and selected attributes missing from the archive
are removed. Use "-" to read the archive from standard input.

With --target, the paths of the archive are taken relative to the given
directory. With --verify, each attribute is read back after it was written
and compared with the archived value.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 3 if some paths could not be restored.
`,
		GroupID:           cmdGroupArchive,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// RestoreOptions collects all options for the restore command.
type RestoreOptions struct {
	Target string
	Verify bool
	filter.NameFilterOptions
}

func (opts *RestoreOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVarP(&opts.Target, "target", "t", "", "directory the archived paths are relative to")
	f.BoolVar(&opts.Verify, "verify", false, "read back and compare the restored attributes")
	opts.NameFilterOptions.Add(f)
}

func (opts RestoreOptions) targetPath(rec dump.Record) string {
	p := filepath.FromSlash(rec.Path)
	if opts.Target != "" {
		p = filepath.Join(opts.Target, p)
	}
	return p
}

// verifyRecord reads the selected attributes of rec back from path and
// compares them with their archived hashes.
func verifyRecord(h *xattr.Handle, path string, rec dump.Record, flags xattr.Flags, selected func(string) bool) (int, error) {
	verified := 0
	for _, a := range rec.Attrs {
		if selected != nil && !selected(a.Name) {
			continue
		}
		value, err := h.Get(path, a.Name, flags)
		if err != nil {
			return verified, err
		}
		if err := a.Verify(value); err != nil {
			return verified, errors.Wrap(err, path)
		}
		verified++
	}
	return verified, nil
}

func runRestore(ctx context.Context, opts RestoreOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("wrong number of arguments, usage: restore [flags] archive")
	}

	selected, err := opts.NameFilterOptions.Build(Warnf)
	if err != nil {
		return err
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	rd, err := dump.Open(args[0])
	if err != nil {
		return errors.Fatalf("unable to open archive: %v", err)
	}
	defer func() {
		_ = rd.Close()
	}()

	flags := gopts.Flags()
	var restored, verified int
	failed := false

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Fatalf("unable to read archive: %v", err)
		}
		if err := rec.Verify(); err != nil {
			return errors.Fatalf("archive is damaged: %v", err)
		}

		path := opts.targetPath(rec)
		debug.Log("restoring %d attributes of %v", len(rec.Attrs), path)

		var xerr *xattr.Error
		err = h.Restore(path, rec.Attributes(), flags, selected)
		if errors.As(err, &xerr) {
			Warnf("%v\n", err)
			failed = true
			continue
		}
		if err != nil {
			return err
		}
		restored++
		Verboseff("restored %v\n", path)

		if opts.Verify {
			n, err := verifyRecord(h, path, rec, flags, selected)
			verified += n
			if err != nil {
				Warnf("verification failed: %v\n", err)
				failed = true
			}
		}
	}

	Verbosef("restored attributes of %d paths\n", restored)
	if opts.Verify {
		Verbosef("verified %d attributes\n", verified)
	}
	if failed {
		return ErrIncomplete
	}
	return nil
}
