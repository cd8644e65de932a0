package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	post "post"
)

// This reads a phase document and runs the mission it describes; see
// RunMission for the actual propagation.

var (
	configPath string
	verbose    bool
	traceDir   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to the phase document JSON file")
	flag.BoolVar(&verbose, "verbose", false, "log every completed step, not just phase boundaries")
	flag.StringVar(&traceDir, "trace", "", "directory to write a .xyzv trajectory trace into")
}

// Exit codes exactly as spec.md §6 / SPEC_FULL.md §4.M: 0 clean, 1 I/O
// error, 2 ConfigError, 3 NumericError/LimitReached. A user-interrupted
// cancellation isn't in that table; it's grouped with I/O errors since
// neither is a result of the simulation itself.
const (
	exitOK          = 0
	exitIOError     = 1
	exitConfigError = 2
	exitNumericErr  = 3
	exitCancelled   = exitIOError
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "post: -config is required")
		return exitIOError
	}

	rt, err := post.LoadRuntimeConfig(".", filepath.Dir(configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %s\n", err)
		return exitIOError
	}
	if traceDir != "" {
		rt.TraceDir = traceDir
	}

	body, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: reading %s: %s\n", configPath, err)
		return exitIOError
	}
	overlays, err := post.ParsePhaseDocument(body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %s\n", err)
		return exitConfigError
	}

	sinks := post.MultiSink{post.NewStdoutSink(verbose)}
	if rt.TraceDir != "" {
		trace, err := post.NewTraceSink(filepath.Join(rt.TraceDir, "trajectory.xyzv"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "post: %s\n", err)
			return exitIOError
		}
		sinks = append(sinks, trace)
	}
	defer sinks.Close()

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	cancelled := false
	cancel := func() bool {
		select {
		case <-interrupted:
			cancelled = true
			return true
		default:
			return cancelled
		}
	}

	_, err = post.RunMission(overlays, rt, sinks, cancel)
	if err != nil {
		switch err.(type) {
		case *post.Cancelled:
			fmt.Fprintln(os.Stderr, "post: cancelled")
			return exitCancelled
		case *post.ConfigError:
			fmt.Fprintf(os.Stderr, "post: %s\n", err)
			return exitConfigError
		case *post.NumericError:
			fmt.Fprintf(os.Stderr, "post: %s\n", err)
			return exitNumericErr
		default:
			fmt.Fprintf(os.Stderr, "post: %s\n", err)
			return exitNumericErr
		}
	}
	return exitOK
}
