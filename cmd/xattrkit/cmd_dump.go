package main

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/dump"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/filter"
	"github.com/xattrkit/xattrkit/internal/walker"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func newDumpCommand() *cobra.Command {
	var opts DumpOptions

	cmd := &cobra.Command{
		Use:   "dump [flags] [path...]",
		Short: "Save the attributes of files to an archive",
		Long: `
The "dump" command reads the attributes of the given paths and writes them to
an archive, which can later be applied with the "restore" command. Archives
are written as JSON lines, or as a tar file holding the attributes as PAX
records. Names ending in ".zst" are compressed with zstd.

Paths which cannot be read are reported and skipped. Attributes whose name
the archive format cannot store, such as names containing "=" in a tar
archive, are reported and left out.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 3 if some paths or attributes could not be archived.
`,
		GroupID:           cmdGroupArchive,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// DumpOptions collects all options for the dump command.
type DumpOptions struct {
	Recursive    bool
	FilesFrom    []string
	FilesFromRaw []string
	Output       string
	Format       string
	Jobs         int
	MaxOps       float64
	SkipEmpty    bool
	filter.NameFilterOptions
}

func (opts *DumpOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Recursive, "recursive", "r", false, "descend into directories")
	f.StringArrayVar(&opts.FilesFrom, "files-from", nil, "read the paths to dump from a `file` (can be combined with file args; can be specified multiple times)")
	f.StringArrayVar(&opts.FilesFromRaw, "files-from-raw", nil, "read the NUL-separated paths to dump from a `file` (can be combined with file args; can be specified multiple times)")
	f.StringVarP(&opts.Output, "output", "O", "-", "write the archive to `file` (use - for stdout)")
	f.StringVar(&opts.Format, "format", "", "archive `format`, \"jsonl\" or \"tar\" (default: from the output file name)")
	f.IntVarP(&opts.Jobs, "jobs", "j", 0, "number of paths read concurrently (default: walker.jobs or 4)")
	f.Float64Var(&opts.MaxOps, "max-ops", 0, "limit the number of paths read per second (default: unlimited)")
	f.BoolVar(&opts.SkipEmpty, "skip-empty", false, "do not write paths without attributes")
	opts.NameFilterOptions.Add(f)
}

func (opts DumpOptions) walkerOptions(gopts GlobalOptions) (walker.Options, error) {
	wopts, err := gopts.WalkerOptions()
	if err != nil {
		return walker.Options{}, err
	}
	wopts.Recursive = opts.Recursive
	if opts.Jobs > 0 {
		wopts.Jobs = opts.Jobs
	}
	if opts.MaxOps > 0 {
		wopts.OpsPerSecond = opts.MaxOps
	}
	return wopts, nil
}

// collectTargets returns the paths given as arguments and read from the
// --files-from files.
func (opts DumpOptions) collectTargets(args []string) ([]string, error) {
	var targets []string

	for _, files := range []struct {
		names []string
		raw   bool
	}{{opts.FilesFrom, false}, {opts.FilesFromRaw, true}} {
		paths, err := walker.ReadFilesFrom(files.names, files.raw)
		if err != nil {
			return nil, err
		}
		targets = append(targets, paths...)
	}

	targets = append(targets, args...)
	if len(targets) == 0 {
		return nil, errors.Fatal("nothing to dump, please specify paths or --files-from")
	}
	return targets, nil
}

func filterAttributes(attrs []xattr.Attribute, selected func(string) bool) []xattr.Attribute {
	if selected == nil {
		return attrs
	}
	res := attrs[:0]
	for _, a := range attrs {
		if selected(a.Name) {
			res = append(res, a)
		}
	}
	return res
}

// dropUnsupported removes the attributes out cannot store, passing the error
// for each one to report.
func dropUnsupported(out *dump.Writer, attrs []xattr.Attribute, report func(error)) []xattr.Attribute {
	res := attrs[:0]
	for _, a := range attrs {
		if err := out.CheckName(a.Name); err != nil {
			report(err)
			continue
		}
		res = append(res, a)
	}
	return res
}

func runDump(ctx context.Context, opts DumpOptions, gopts GlobalOptions, args []string) error {
	targets, err := opts.collectTargets(args)
	if err != nil {
		return err
	}

	format, err := dump.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	if opts.Format == "" {
		format = dump.FormatFromName(opts.Output)
	}

	selected, err := opts.NameFilterOptions.Build(Warnf)
	if err != nil {
		return err
	}

	wopts, err := opts.walkerOptions(gopts)
	if err != nil {
		return err
	}
	w, err := walker.New(wopts)
	if err != nil {
		return err
	}

	h, err := gopts.OpenHandle()
	if err != nil {
		return err
	}

	out, err := dump.Create(opts.Output, format)
	if err != nil {
		return errors.Fatalf("unable to create archive: %v", err)
	}

	var (
		failed  atomic.Bool
		written atomic.Int64
		m       sync.Mutex
	)

	warn := func(path string, err error) error {
		Warnf("%s%v: %v\n", clearLine(), path, err)
		failed.Store(true)
		return nil
	}
	w.OnError = warn

	flags := gopts.Flags()
	err = w.Walk(ctx, targets, func(_ context.Context, item walker.Item) error {
		attrs, err := h.Dump(item.Path, flags)
		if err != nil {
			return warn(item.Path, err)
		}

		attrs = filterAttributes(attrs, selected)
		attrs = dropUnsupported(out, attrs, func(err error) {
			_ = warn(item.Path, err)
		})
		if len(attrs) == 0 && opts.SkipEmpty {
			debug.Log("skipping %v, no attributes", item.Path)
			return nil
		}

		rec := dump.NewRecord(filepath.ToSlash(item.Path), attrs)
		rec.Dir = item.Dir

		m.Lock()
		defer m.Unlock()
		if err := out.Write(rec); err != nil {
			return err
		}
		written.Add(1)
		if opts.Output != "-" {
			Verboseff("%v: %d attributes\n", item.Path, len(attrs))
		}
		return nil
	})

	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if opts.Output != "-" {
		Verbosef("wrote %d records to %v\n", written.Load(), opts.Output)
	}
	if failed.Load() {
		return ErrIncomplete
	}
	return nil
}
