package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/b97tsk/wake"
	"github.com/b97tsk/wake/internal/config"
	"github.com/b97tsk/wake/internal/heap"
	"github.com/b97tsk/wake/internal/statsfile"
	"github.com/b97tsk/wake/tracing"
)

type options struct {
	configPath    string
	color         string
	logLevel      string
	trace         bool
	statsOut      string
	heapSize      int
	taskCapacity  int
	queueCapacity int
}

// load returns the config file settings with command line overrides
// applied.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("trace") {
		cfg.Trace.Enabled = o.trace
	}
	if flags.Changed("heap-size") {
		cfg.Heap.Size = o.heapSize
	}
	if flags.Changed("task-capacity") {
		cfg.Executor.TaskCapacity = o.taskCapacity
	}
	if flags.Changed("queue-capacity") {
		cfg.Executor.QueueCapacity = o.queueCapacity
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func (o *options) colorEnabled(w io.Writer) (bool, error) {
	switch o.color {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color %q (expected: auto|on|off)", o.color)
	}
}

// A machine is everything a demo program runs on.
type machine struct {
	program string
	runID   string
	cfg     config.Config
	out     io.Writer
	log     *slog.Logger
	heap    *heap.Heap
	exec    *wake.Executor

	ok   *color.Color
	fail *color.Color

	tp        *sdktrace.TracerProvider
	traceFile *os.File
}

func (o *options) setup(cmd *cobra.Command, program string) (*machine, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}

	colored, err := o.colorEnabled(cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	m := &machine{
		program: program,
		runID:   uuid.NewString(),
		cfg:     cfg,
		out:     &syncWriter{w: cmd.OutOrStdout()},
		ok:      color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
	}

	for _, c := range []*color.Color{m.ok, m.fail} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	m.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("program", program, "run", m.runID)

	m.heap, err = heap.New(cfg.Heap.Size)
	if err != nil {
		return nil, err
	}

	errOut := &syncWriter{w: cmd.ErrOrStderr()}
	m.heap.OnOutOfMemory(func(int) {
		fmt.Fprintln(errOut, "ALLOC ERR")
	})

	ec := cfg.ExecutorConfig()
	ec.Allocator = m.heap
	ec.Logger = m.log

	if cfg.Trace.Enabled {
		w := cmd.ErrOrStderr()
		if cfg.Trace.Output != "" {
			f, err := os.Create(cfg.Trace.Output)
			if err != nil {
				return nil, err
			}
			m.traceFile = f
			w = f
		}

		m.tp, err = tracing.NewStdoutProvider(w, "wakesim", version)
		if err != nil {
			_ = m.close(context.Background())
			return nil, err
		}

		ec.Observer = tracing.New(m.tp, m.runID)
	}

	m.exec = wake.NewExecutor(ec)

	m.log.Debug("machine ready",
		"heap", cfg.Heap.Size,
		"task_capacity", cfg.Executor.TaskCapacity,
		"queue_capacity", cfg.Executor.QueueCapacity,
	)

	return m, nil
}

// finish reports the run and releases what setup acquired.
func (m *machine) finish(ctx context.Context, statsOut string, ticks uint64) error {
	stats := m.exec.Stats()

	m.log.Info("run finished",
		"spawned", stats.Spawned,
		"completed", stats.Completed,
		"polls", stats.Polls,
		"passes", stats.Passes,
		"stale_wakes", stats.StaleWakes,
		"overflows", stats.Overflows,
		"live", stats.Live,
	)

	var errs []error

	if statsOut != "" {
		errs = append(errs, statsfile.Write(statsOut, &statsfile.Snapshot{
			RunID:    m.runID,
			Program:  m.program,
			Executor: stats,
			Heap:     m.heap.Stats(),
			Ticks:    ticks,
		}))
	}

	errs = append(errs, m.close(ctx))

	return errors.Join(errs...)
}

func (m *machine) close(ctx context.Context) error {
	var errs []error
	if m.tp != nil {
		errs = append(errs, m.tp.Shutdown(ctx))
	}
	if m.traceFile != nil {
		errs = append(errs, m.traceFile.Close())
	}
	return errors.Join(errs...)
}

// syncWriter serializes writes from the run loop and the timer interrupt.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
