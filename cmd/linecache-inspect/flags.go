package main

// flags.go defines the command-line surface for linecache-inspect
// using pflag for GNU-style long/short flags, the way the rest of the
// pack's CLIs (rather than the stdlib flag package) parse arguments.
//
// © 2025 linecache authors. MIT License.

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

type options struct {
	target   string
	json     bool
	watch    bool
	interval time.Duration

	heapProfile      string
	goroutineProfile string

	save string

	version bool
}

func parseFlags() *options {
	opts := &options{}

	pflag.StringVarP(&opts.target, "target", "t", "http://localhost:6060", "base URL of the instrumented service")
	pflag.BoolVarP(&opts.json, "json", "j", false, "emit raw JSON instead of a formatted table")
	pflag.BoolVarP(&opts.watch, "watch", "w", false, "poll the target at --interval instead of exiting after one fetch")
	pflag.DurationVar(&opts.interval, "interval", 2*time.Second, "polling interval in watch mode")
	pflag.StringVar(&opts.heapProfile, "heap-profile", "", "download a heap pprof profile to this path and exit")
	pflag.StringVar(&opts.goroutineProfile, "goroutine-profile", "", "download a goroutine pprof profile to this path and exit")
	pflag.StringVar(&opts.save, "save", "", "persist each fetched snapshot to this path, written atomically")
	pflag.BoolVar(&opts.version, "version", false, "print the build version and exit")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "linecache-inspect polls a linecache-instrumented service's stats endpoint.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: linecache-inspect [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	return opts
}
