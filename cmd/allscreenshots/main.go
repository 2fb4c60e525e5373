// Command allscreenshots captures web pages and manages capture jobs from
// the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Config holds the streams and environment file the CLI runs against.
type Config struct {
	Stdout  io.Writer
	Stderr  io.Writer
	EnvFile string
}

// DefaultConfig returns a Config wired to the process streams.
func DefaultConfig() Config {
	return Config{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		EnvFile: ".env",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], DefaultConfig()); err != nil {
		stop()
		fatal("%v", err)
	}
}

func run(ctx context.Context, args []string, cfg Config) error {
	root := newRootCommand(cfg)
	root.SetArgs(args)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)
	return root.ExecuteContext(ctx)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
