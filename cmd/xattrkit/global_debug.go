//go:build debug || profile

package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/xattrkit/xattrkit/internal/errors"
)

type profileOptions struct {
	listen    string
	memPath   string
	cpuPath   string
	tracePath string
}

var profileOpts profileOptions
var prof interface {
	Stop()
}

func registerProfiling(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&profileOpts.listen, "listen-profile", "", "listen on this `address:port` for memory profiling")
	f.StringVar(&profileOpts.memPath, "mem-profile", "", "write memory profile to `dir`")
	f.StringVar(&profileOpts.cpuPath, "cpu-profile", "", "write cpu profile to `dir`")
	f.StringVar(&profileOpts.tracePath, "trace-profile", "", "write trace to `dir`")

	origPreRun := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := origPreRun(c, args); err != nil {
			return err
		}
		return profileOpts.Start()
	}

	cobra.OnFinalize(func() {
		if prof != nil {
			prof.Stop()
		}
	})
}

func (opts profileOptions) Start() error {
	if opts.listen != "" {
		fmt.Fprintf(os.Stderr, "running profile HTTP server on %v\n", opts.listen)
		go func() {
			err := http.ListenAndServe(opts.listen, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "profile HTTP server listen failed: %v\n", err)
			}
		}()
	}

	profilesEnabled := 0
	for _, p := range []string{opts.memPath, opts.cpuPath, opts.tracePath} {
		if p != "" {
			profilesEnabled++
		}
	}
	if profilesEnabled > 1 {
		return errors.Fatal("only one profile (memory, CPU or trace) may be activated at the same time")
	}

	switch {
	case opts.memPath != "":
		prof = profile.Start(profile.Quiet, profile.NoShutdownHook, profile.MemProfile, profile.ProfilePath(opts.memPath))
	case opts.cpuPath != "":
		prof = profile.Start(profile.Quiet, profile.NoShutdownHook, profile.CPUProfile, profile.ProfilePath(opts.cpuPath))
	case opts.tracePath != "":
		prof = profile.Start(profile.Quiet, profile.NoShutdownHook, profile.TraceProfile, profile.ProfilePath(opts.tracePath))
	}

	return nil
}
