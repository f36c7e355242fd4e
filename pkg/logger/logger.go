// Package logger wraps the standard logger with repeat suppression.
// Batch refreshes hit the cache in tight loops and would otherwise spam
// the log with identical lines.
package logger

import (
	"fmt"
	"log"
	"sync"
	"time"
)

var std = &deduplicator{window: 2 * time.Second}

type deduplicator struct {
	mu      sync.Mutex
	pending string
	count   int
	window  time.Duration
	timer   *time.Timer
}

// Dedup logs like log.Printf, but consecutive identical messages are
// collapsed into one line with a repeat count, flushed after a short
// quiet window.
func Dedup(format string, args ...any) {
	std.log(fmt.Sprintf(format, args...))
}

// Flush writes any suppressed line immediately. Call before shutdown.
func Flush() {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.flushLocked()
}

func (d *deduplicator) log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if msg != d.pending {
		d.flushLocked()
		d.pending = msg
		d.count = 0
	}
	d.count++
	d.rearmLocked()
}

func (d *deduplicator) rearmLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.flushLocked()
	})
}

func (d *deduplicator) flushLocked() {
	if d.count == 0 {
		return
	}
	if d.count == 1 {
		log.Print(d.pending)
	} else {
		log.Printf("%s (%d)", d.pending, d.count)
	}
	d.count = 0
	d.pending = ""
}
