package wake_test

import (
	"context"
	"testing"
	"time"

	"github.com/b97tsk/wake"
)

func TestSignal(t *testing.T) {
	t.Run("RaisedBeforeWait", func(t *testing.T) {
		e := wake.NewExecutor(wake.Config{})

		var sig wake.Signal
		_ = sig.Notify()
		_ = sig.Notify()

		if _, err := e.BlockOn(context.Background(), sig.Wait()); err != nil {
			t.Fatal(err)
		}

		if sig.Raised() {
			t.Fatal("Wait did not lower the signal")
		}
	})
	t.Run("FromGoroutine", func(t *testing.T) {
		e := wake.NewExecutor(wake.Config{})

		var sig wake.Signal

		go func() {
			time.Sleep(time.Millisecond)
			_ = sig.Notify()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := e.BlockOn(ctx, sig.Wait()); err != nil {
			t.Fatal(err)
		}
	})
}

func TestWakerCell(t *testing.T) {
	e := wake.NewExecutor(wake.Config{})

	var cell wake.WakerCell

	if err := cell.Wake(); err != nil {
		t.Fatal("waking an empty cell failed")
	}

	c := &counter{}
	mustSpawn(t, e, wake.FutureFunc(func(cx *wake.Context) wake.Poll {
		cell.Register(cx.Waker())
		return c.Poll(cx)
	}))
	e.Step()

	// A recurring event keeps waking the same task.
	for i := 2; i <= 4; i++ {
		_ = cell.Wake()
		e.Step()
		if c.polls != i {
			t.Fatalf("polls = %d, want %d", c.polls, i)
		}
	}

	w, ok := cell.Take()
	if !ok || !w.WillWake(c.waker) {
		t.Fatal("Take returned the wrong waker")
	}

	_ = cell.Wake()
	if n := e.Step(); n != 0 {
		t.Fatal("empty cell woke a task")
	}

	cell.Register(w)
	cell.Clear()
	if _, ok := cell.Take(); ok {
		t.Fatal("Clear did not empty the cell")
	}
}

func TestWaitGroup(t *testing.T) {
	e := wake.NewExecutor(wake.Config{})

	var wg wake.WaitGroup

	wg.Add(3)

	for range 3 {
		mustSpawn(t, e, wake.FutureFunc(func(cx *wake.Context) wake.Poll {
			wg.Done()
			return wake.Ready(nil)
		}))
	}

	v, err := e.BlockOn(context.Background(), wake.FutureFunc(func(cx *wake.Context) wake.Poll {
		if p := wg.Wait().Poll(cx); !p.IsReady() {
			return p
		}
		return wake.Ready(wg.Count())
	}))
	if err != nil {
		t.Fatal(err)
	}

	if v != 0 {
		t.Fatalf("BlockOn returned %v", v)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("negative counter did not panic")
		}
	}()

	wg.Done()
}

func TestYield(t *testing.T) {
	e := wake.NewExecutor(wake.Config{})

	mustSpawn(t, e, wake.Yield())

	if n := e.Step(); n != 1 || e.Len() != 1 {
		t.Fatal("Yield completed on its first poll")
	}

	if n := e.Step(); n != 1 || e.Len() != 0 {
		t.Fatal("Yield did not complete on its second poll")
	}
}
