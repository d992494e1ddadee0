package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/options"
	"github.com/xattrkit/xattrkit/internal/walker"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

var version = "0.3.0-dev (compiled manually)"

// GlobalOptions hold all global options for xattrkit.
type GlobalOptions struct {
	NoDereference   bool
	ShowCompression bool
	Quiet           bool
	Verbose         int
	JSON            bool

	stdout io.Writer
	stderr io.Writer

	// verbosity is set as follows:
	//  0 means: don't print any messages except errors, this is used when --quiet is specified
	//  1 is the default: print essential messages
	//  2 means: print more messages, report minor things, this is used when --verbose is specified
	//  3 means: print very detailed debug messages, this is used when --verbose=2 is specified
	verbosity uint

	Options []string

	extended options.Options
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.NoDereference, "no-dereference", "h", false, "operate on symbolic links themselves instead of their targets (default: $XATTRKIT_NO_DEREFERENCE)")
	f.BoolVar(&opts.ShowCompression, "show-compression", false, "include the HFS+ compression attributes (darwin only)")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "do not output informational messages")
	// use empty parameter name as `-v, --verbose n` instead of the correct `--verbose=n` is confusing
	f.CountVarP(&opts.Verbose, "verbose", "v", "be verbose (specify multiple times or a level using --verbose=n``, max level/times is 2)")
	f.BoolVar(&opts.JSON, "json", false, "set output mode to JSON for commands that support it")
	f.StringSliceVarP(&opts.Options, "option", "o", []string{}, "set extended option (`key=value`, can be specified multiple times)")

	opts.NoDereference = envBool("XATTRKIT_NO_DEREFERENCE")
	if s := os.Getenv("XATTRKIT_OPTIONS"); s != "" {
		opts.Options = strings.Split(s, ",")
	}
}

func envBool(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func (opts *GlobalOptions) PreRun() error {
	// set verbosity, default is one
	opts.verbosity = 1
	if opts.Quiet && opts.Verbose > 0 {
		return errors.Fatal("--quiet and --verbose cannot be specified at the same time")
	}

	switch {
	case opts.Verbose >= 2:
		opts.verbosity = 3
	case opts.Verbose > 0:
		opts.verbosity = 2
	case opts.Quiet:
		opts.verbosity = 0
	}

	// parse extended options
	extendedOpts, err := options.Parse(opts.Options)
	if err != nil {
		return err
	}
	if unknown := extendedOpts.Unknown("xattr", "walker"); len(unknown) > 0 {
		return errors.Fatalf("unknown extended option(s): %v, run the `options` command for a list", strings.Join(unknown, ", "))
	}
	opts.extended = extendedOpts
	return nil
}

// Flags returns the syscall flags selected on the command line.
func (opts GlobalOptions) Flags() xattr.Flags {
	var flags xattr.Flags
	if opts.NoDereference {
		flags |= xattr.NoFollow
	}
	if opts.ShowCompression {
		flags |= xattr.ShowCompression
	}
	return flags
}

// OpenHandle returns an xattr handle configured from the extended options.
func (opts GlobalOptions) OpenHandle() (*xattr.Handle, error) {
	cfg := xattr.NewConfig()
	if err := opts.extended.Extract("xattr").Apply("xattr", &cfg); err != nil {
		return nil, err
	}
	debug.Log("xattr config %+v", cfg)
	return xattr.New(cfg), nil
}

// WalkerOptions returns the walker defaults with the extended options
// applied.
func (opts GlobalOptions) WalkerOptions() (walker.Options, error) {
	wopts := walker.NewOptions()
	if err := opts.extended.Extract("walker").Apply("walker", &wopts); err != nil {
		return walker.Options{}, err
	}
	return wopts, nil
}

var globalOptions = GlobalOptions{
	stdout: os.Stdout,
	stderr: os.Stderr,
}

func stdoutIsTerminal() bool {
	f, ok := globalOptions.stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func stderrIsTerminal() bool {
	f, ok := globalOptions.stderr.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// clearLine returns the escape sequence that clears the current terminal
// line, or nothing if stderr is not a terminal.
func clearLine() string {
	if !stderrIsTerminal() {
		return ""
	}
	return "\x1b[2K\r"
}

// Printf writes the message to the configured stdout stream.
func Printf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(globalOptions.stdout, format, args...)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "unable to write to stdout: %v\n", err)
	}
}

// Println writes the message to the configured stdout stream.
func Println(args ...interface{}) {
	_, err := fmt.Fprintln(globalOptions.stdout, args...)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "unable to write to stdout: %v\n", err)
	}
}

// Verbosef calls Printf to write the message when the verbose flag is set.
func Verbosef(format string, args ...interface{}) {
	if globalOptions.verbosity >= 2 {
		Printf(format, args...)
	}
}

// Verboseff calls Printf to write the message when the verbosity is >= 3
func Verboseff(format string, args ...interface{}) {
	if globalOptions.verbosity >= 3 {
		Printf(format, args...)
	}
}

// Warnf writes the message to the configured stderr stream.
func Warnf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(globalOptions.stderr, format, args...)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "unable to write to stderr: %v\n", err)
	}
}
