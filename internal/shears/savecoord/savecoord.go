// Package savecoord implements the shears save-request coordinator: a
// lock-free flag set from two independent triggers (a GPIO falling edge and
// a software entry point), observed and cleared by a dedicated ~100Hz worker
// that then drives the save path of parsing the latest line and appending
// one CSV row.
package savecoord

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"watermelon-log-transfer/internal/csvlog"
	"watermelon-log-transfer/internal/gga"
	"watermelon-log-transfer/internal/shears/lineassembler"
)

// PollInterval is the worker's polling period, ~100Hz.
const PollInterval = 10 * time.Millisecond

// Coordinator owns the save-request flag and the worker that drains it.
type Coordinator struct {
	flag      atomic.Bool
	assembler *lineassembler.Assembler
	csvPath   string
	saved     atomic.Uint64 // rows successfully appended, for Snapshot
	dropped   atomic.Uint64 // requests dropped because the latest line was invalid
}

// New returns a Coordinator that saves parsed lines from assembler into the
// CSV file at csvPath.
func New(assembler *lineassembler.Assembler, csvPath string) *Coordinator {
	return &Coordinator{assembler: assembler, csvPath: csvPath}
}

// RequestSave sets the save-request flag. It is idempotent (calling it
// repeatedly before the worker observes it still results in exactly one
// save) and safe to call from any context, including a GPIO edge callback,
// since it only performs an atomic store.
func (c *Coordinator) RequestSave() {
	c.flag.Store(true)
}

// Snapshot reports coordinator counters for diagnostics.
type Snapshot struct {
	Saved   uint64
	Dropped uint64
}

func (c *Coordinator) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{Saved: c.saved.Load(), Dropped: c.dropped.Load()}
}

// Run polls the flag at PollInterval until ctx is cancelled. On each
// observed-and-cleared flag it inspects the latest-line slot, drops with a
// warning if invalid, otherwise parses and appends one CSV row, then clears
// the slot.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !c.flag.CompareAndSwap(true, false) {
				continue
			}
			c.save()
		}
	}
}

func (c *Coordinator) save() {
	line, valid := c.assembler.Latest()
	if !valid {
		log.Printf("savecoord: save requested but latest-line slot is invalid, dropping")
		c.dropped.Add(1)
		return
	}

	fix, err := gga.Parse(line)
	if err != nil {
		log.Printf("savecoord: malformed sentence, dropping: %v", err)
		c.dropped.Add(1)
		c.assembler.Clear()
		return
	}

	if err := csvlog.AppendRow(c.csvPath, fix); err != nil {
		log.Printf("savecoord: append row failed: %v", err)
		c.dropped.Add(1)
		c.assembler.Clear()
		return
	}

	c.saved.Add(1)
	c.assembler.Clear()
}
