// Package scheduler drives every Steppable device in the simulation from a
// single monotonic Clock. It replaces the source project's reference-counted
// interior-mutability devices with stable integer DeviceIDs and a central
// device table, per the arena-and-stable-indices design: the scheduler's
// queue refers to devices by DeviceID rather than holding a direct,
// possibly-cyclic reference to them. The bus's window table is separate and
// holds each Addressable device directly.
package scheduler

import (
	"container/heap"

	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/curated"
	"github.com/moaemu/moa/logger"
)

// DeviceID stably identifies a device for the lifetime of a machine. IDs are
// assigned once at machine build time and never reused; there is no dynamic
// device insertion or removal.
type DeviceID uint32

type entry struct {
	clock    clocks.Clock
	sequence uint64 // insertion order, for stable tie-breaking
	id       DeviceID
}

type queue []entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].clock != q[j].clock {
		return q[i].clock < q[j].clock
	}
	return q[i].sequence < q[j].sequence
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x interface{}) { *q = append(*q, x.(entry)) }

func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// Scheduler dispatches Step calls to registered Steppable devices in
// monotonic clock order.
type Scheduler struct {
	clock   clocks.Clock
	devices map[DeviceID]namedDevice
	pending queue
	nextSeq uint64
	stop    bool
}

type namedDevice struct {
	name string
	dev  bus.Steppable
}

// New creates an empty Scheduler at clock 0.
func New() *Scheduler {
	return &Scheduler{devices: make(map[DeviceID]namedDevice)}
}

// Clock returns the scheduler's current simulation time.
func (s *Scheduler) Clock() clocks.Clock {
	return s.clock
}

// Register adds dev to the device table and enqueues its first Step at the
// scheduler's current clock. It must be called once per device, during
// machine build; there is no way to unregister a device afterwards.
func (s *Scheduler) Register(id DeviceID, name string, dev bus.Steppable) {
	s.devices[id] = namedDevice{name: name, dev: dev}
	s.enqueue(id, s.clock)
}

func (s *Scheduler) enqueue(id DeviceID, at clocks.Clock) {
	heap.Push(&s.pending, entry{clock: at, sequence: s.nextSeq, id: id})
	s.nextSeq++
}

// Stop cooperatively halts RunUntil/RunFor at the next step boundary. The
// Host calls this from another goroutine (or from within a Step) to cancel a
// long run without a per-operation timeout.
func (s *Scheduler) Stop() {
	s.stop = true
}

// RunUntil repeatedly pops the earliest-scheduled device, advances the
// system clock to that device's time, invokes its Step, and re-enqueues it
// at clock+delay. It returns once the queue's earliest entry is after
// target, or the Host has called Stop.
//
// The clock never decreases: popping an entry whose clock is already behind
// the scheduler's current clock would violate the monotonic ordering
// invariant, so RunUntil always advances s.clock forward to the popped
// entry's clock before stepping it.
func (s *Scheduler) RunUntil(target clocks.Clock) error {
	s.stop = false

	for len(s.pending) > 0 && s.pending[0].clock <= target {
		if s.stop {
			return nil
		}

		e := heap.Pop(&s.pending).(entry)
		if e.clock > s.clock {
			s.clock = e.clock
		}

		nd, ok := s.devices[e.id]
		if !ok {
			continue
		}

		delay := nd.dev.Step(s.clock)
		if delay == 0 {
			// a step that returns 0 is treated as 1ns, to guarantee progress
			delay = 1
		}

		s.enqueue(e.id, s.clock.Add(delay))
	}

	if s.clock < target {
		s.clock = target
	}

	return nil
}

// RunFor is RunUntil(Clock() + elapsed).
func (s *Scheduler) RunFor(elapsed clocks.ClockElapsed) error {
	return s.RunUntil(s.clock.Add(elapsed))
}

// Halt propagates a device failure: it stops the scheduler and wraps err so
// the Host can identify which device produced it. Unlike an exception raised
// by a CPU core during instruction execution (which is turned into an
// internal vector and never leaves the core), an error from Step is always
// fatal to the run.
func (s *Scheduler) Halt(id DeviceID, err error) error {
	s.stop = true
	name := "unknown"
	if nd, ok := s.devices[id]; ok {
		name = nd.name
	}
	wrapped := curated.Errorf(curated.DeviceError, name, err)
	logger.Logf(logger.Allow, name, "halted scheduler: %v", err)
	return wrapped
}
