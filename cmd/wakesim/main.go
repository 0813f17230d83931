// Command wakesim runs small programs on a wake executor the way they would
// run on a microcontroller: a fixed heap, a bounded task table and a timer
// interrupt waking tasks from outside the run loop.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	opts := new(options)

	root := &cobra.Command{
		Use:           "wakesim",
		Short:         "Run demo programs on a single-threaded wake executor",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml or .yml)")
	flags.StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.BoolVar(&opts.trace, "trace", false, "export executor spans")
	flags.StringVar(&opts.statsOut, "stats-out", "", "write a stats snapshot to this file")
	flags.IntVar(&opts.heapSize, "heap-size", 0, "heap size in bytes")
	flags.IntVar(&opts.taskCapacity, "task-capacity", 0, "maximum number of live tasks")
	flags.IntVar(&opts.queueCapacity, "queue-capacity", 0, "wake queue capacity")

	root.AddCommand(
		newCounterCmd(opts),
		newSysTickCmd(opts),
		newVersionCmd(opts),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
