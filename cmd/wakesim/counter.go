package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/b97tsk/wake"
)

func newCounterCmd(opts *options) *cobra.Command {
	var iter int

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Spawn tasks that each bump a shared counter once",
		Long: `Spawn --iter tasks, each of which increments a shared counter on its
first poll, run the executor until every task has completed, and check the
count. Every task is charged against the heap; a heap too small for --iter
tasks reports ALLOC ERR and fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iter < 0 {
				return fmt.Errorf("invalid --iter %d", iter)
			}

			m, err := opts.setup(cmd, "counter")
			if err != nil {
				return err
			}

			err = runCounter(cmd.Context(), m, iter)

			return errors.Join(err, m.finish(context.WithoutCancel(cmd.Context()), opts.statsOut, 0))
		},
	}

	cmd.Flags().IntVar(&iter, "iter", 20, "number of tasks to spawn")

	return cmd
}

func runCounter(ctx context.Context, m *machine, iter int) error {
	cnt := 0

	sp := m.exec.Spawner()
	for i := range iter {
		if _, err := sp.Spawn(wake.Lazy(func(*wake.Context) { cnt++ })); err != nil {
			return fmt.Errorf("spawn task %d: %w", i, err)
		}
	}

	if err := m.exec.Run(ctx); err != nil {
		return err
	}

	if cnt == iter {
		m.ok.Fprintln(m.out, "future worked!")
	} else {
		m.fail.Fprintln(m.out, "something went wrong...")
	}

	return nil
}
