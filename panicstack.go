package wake

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

// panicstack collects panics raised by tasks during a scheduling pass.
// The executor evicts a panicking task, finishes the pass, and then
// re-panics with everything collected.
type panicstack []panicitem

func (ps panicstack) Repanic() {
	if len(ps) != 0 {
		panic(&panicvalue{items: ps})
	}
}

func (ps *panicstack) Try(id TaskID, f func()) (ok bool) {
	defer func() {
		if !ok {
			v := recover()
			if v == nil {
				panic("wake: wake does not support runtime.Goexit()")
			}
			*ps = append(*ps, panicitem{id, v, debug.Stack()})
		}
	}()
	f()
	return true
}

type panicitem struct {
	task  TaskID
	value any
	stack []byte
}

// panicvalue is the value an executor panics with when tasks panicked.
// It implements error; Unwrap returns the panic values that were errors.
type panicvalue struct {
	items []panicitem
	errs  atomic.Pointer[[]error]
}

func (pv *panicvalue) Error() string {
	var b strings.Builder
	b.WriteString("wake: task panicked, as follows:")
	for i, p := range pv.items {
		fmt.Fprintf(&b, "\n(%d/%d) task %v panic: %v", i+1, len(pv.items), p.task, p.value)
		if p.stack != nil {
			b.WriteString("\n\n")
			b.Write(p.stack)
		}
	}
	return b.String()
}

func (pv *panicvalue) Unwrap() []error {
	if p := pv.errs.Load(); p != nil {
		return *p
	}
	var errs []error
	for _, p := range pv.items {
		if err, ok := p.value.(error); ok {
			errs = append(errs, err)
		}
	}
	pv.errs.Store(&errs)
	return errs
}
