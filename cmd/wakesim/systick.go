package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/b97tsk/wake"
	"github.com/b97tsk/wake/systick"
)

func newSysTickCmd(opts *options) *cobra.Command {
	var (
		period time.Duration
		ticks  uint64
	)

	cmd := &cobra.Command{
		Use:   "systick",
		Short: "Wake tasks from a simulated timer interrupt",
		Long: `Spawn three tasks that print x1, x2 and x3 on every poll, then start a
periodic timer whose interrupt handler prints a dot and wakes them on
multiples of one, two and three ticks. The program stops after --ticks
ticks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("period") && period <= 0 {
				return fmt.Errorf("invalid --period %s", period)
			}

			m, err := opts.setup(cmd, "systick")
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("period") {
				period, _ = m.cfg.Period() // Validated by setup.
			}
			if !cmd.Flags().Changed("ticks") {
				ticks = m.cfg.Ticks()
			}

			n, err := runSysTick(cmd.Context(), m, period, ticks)

			return errors.Join(err, m.finish(context.WithoutCancel(cmd.Context()), opts.statsOut, n))
		},
	}

	cmd.Flags().DurationVar(&period, "period", 0, "tick period (default from config)")
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "number of ticks to run for (default from config)")

	return cmd
}

func runSysTick(ctx context.Context, m *machine, period time.Duration, ticks uint64) (uint64, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := systick.NewTimer(period)
	clock := systick.NewClock(timer)

	var cells [3]wake.WakerCell

	for i := range cells {
		cell := &cells[i]
		label := fmt.Sprintf("x%d", i+1)
		f := wake.FutureFunc(func(cx *wake.Context) wake.Poll {
			cell.Register(cx.Waker())
			fmt.Fprintln(m.out, label)
			return wake.Pending()
		})
		if _, err := m.exec.Spawn(f); err != nil {
			return 0, fmt.Errorf("spawn %s: %w", label, err)
		}
	}

	deadline := clock.Delay(ticks)
	stop := wake.FutureFunc(func(cx *wake.Context) wake.Poll {
		if !deadline.Poll(cx).IsReady() {
			return wake.Pending()
		}
		cancel()
		return wake.Ready(nil)
	})
	if _, err := m.exec.Spawn(stop); err != nil {
		return 0, fmt.Errorf("spawn deadline: %w", err)
	}

	wakeCell := func(i int) {
		if err := cells[i].Wake(); err != nil {
			m.log.Warn("wake failed", "cell", i+1, "err", err)
		}
	}

	timer.OnTick(func(tick uint64) {
		if tick > ticks {
			return
		}
		fmt.Fprint(m.out, ".")
		wakeCell(0)
		if tick%2 == 0 {
			wakeCell(1)
		}
		if tick%3 == 0 {
			wakeCell(2)
		}
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return m.exec.Serve(gctx) })
	g.Go(func() error { return timer.Start(gctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = nil
	}

	n := min(timer.Ticks(), ticks)

	if err == nil {
		m.ok.Fprintf(m.out, "\ndone after %d ticks\n", n)
	}

	return n, err
}
