// Package systick simulates a periodic system timer and builds delays and
// timeouts on top of it.
//
// A [Timer] stands in for a hardware tick interrupt: it runs its handlers
// once per period on its own goroutine. A [Clock] counts those ticks and
// wakes tasks waiting on [Clock.Delay] or [Clock.Timeout] futures when
// their deadlines come up. The executor itself has no notion of time; this
// is how an application adds one.
package systick
