package wake_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/b97tsk/wake"
)

func Example() {
	// Create an executor with room for 32 tasks.
	myExecutor := wake.NewExecutor(wake.Config{TaskCapacity: 32})

	const iter = 20

	cnt := 0

	spawner := myExecutor.Spawner()

	// Spawned tasks are polled at least once, even though nothing ever
	// wakes them.
	for range iter {
		if _, err := spawner.Spawn(wake.Lazy(func(*wake.Context) { cnt++ })); err != nil {
			panic(err)
		}
	}

	// Run until no task is left.
	if err := myExecutor.Run(context.Background()); err != nil {
		panic(err)
	}

	if cnt == iter {
		fmt.Println("future worked!")
	} else {
		fmt.Println("something went wrong...")
	}

	// Output:
	// future worked!
}

// This example demonstrates how an event source running on another
// goroutine, in the role of an interrupt handler, resumes a task.
func Example_interrupt() {
	var wg sync.WaitGroup // For keeping track of goroutines.

	myExecutor := wake.NewExecutor(wake.Config{})

	// The interrupt handler raises sig; the task lowers it.
	var sig wake.Signal

	wg.Go(func() {
		for range 3 {
			for sig.Raised() {
				time.Sleep(time.Millisecond)
			}
			_ = sig.Notify()
		}
	})

	n := 0
	wait := sig.Wait()

	v, err := myExecutor.BlockOn(context.Background(), wake.FutureFunc(func(cx *wake.Context) wake.Poll {
		for wait.Poll(cx).IsReady() {
			n++
			fmt.Println("interrupt", n)
			if n == 3 {
				return wake.Ready("done")
			}
		}
		return wake.Pending()
	}))
	if err != nil {
		panic(err)
	}

	wg.Wait()

	fmt.Println(v)

	// Output:
	// interrupt 1
	// interrupt 2
	// interrupt 3
	// done
}

// This example demonstrates that a Waker outlives its task harmlessly.
func Example_staleWaker() {
	myExecutor := wake.NewExecutor(wake.Config{})

	var old wake.Waker

	first, _ := myExecutor.Spawn(wake.Lazy(func(cx *wake.Context) { old = cx.Waker() }))
	myExecutor.Step()

	polls := 0
	second, _ := myExecutor.Spawn(wake.FutureFunc(func(*wake.Context) wake.Poll {
		polls++
		return wake.Pending()
	}))
	myExecutor.Step()

	fmt.Println("same slot:", first.Slot == second.Slot)

	_ = old.Wake()
	myExecutor.Step()

	fmt.Println("polls:", polls)

	// Output:
	// same slot: true
	// polls: 1
}
