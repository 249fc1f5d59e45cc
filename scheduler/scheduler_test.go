package scheduler_test

import (
	"testing"

	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/scheduler"
)

type countingDevice struct {
	delay clocks.ClockElapsed
	ticks []clocks.Clock
}

func (d *countingDevice) Step(clock clocks.Clock) clocks.ClockElapsed {
	d.ticks = append(d.ticks, clock)
	return d.delay
}

func TestRunUntilAdvancesClockMonotonically(t *testing.T) {
	s := scheduler.New()
	dev := &countingDevice{delay: 10}
	s.Register(1, "dev", dev)

	if err := s.RunUntil(clocks.Clock(35)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.ticks) < 3 {
		t.Fatalf("expected at least 3 steps, got %d: %v", len(dev.ticks), dev.ticks)
	}
	for i := 1; i < len(dev.ticks); i++ {
		if dev.ticks[i] < dev.ticks[i-1] {
			t.Fatalf("clock decreased between steps: %v", dev.ticks)
		}
	}
}

func TestZeroDelayTreatedAsOneNanosecond(t *testing.T) {
	s := scheduler.New()
	dev := &countingDevice{delay: 0}
	s.Register(1, "dev", dev)

	if err := s.RunUntil(clocks.Clock(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.ticks) != 6 {
		t.Fatalf("expected one step per nanosecond (6 steps for clock 0..5), got %d", len(dev.ticks))
	}
}

func TestTwoDevicesInterleaveInClockOrder(t *testing.T) {
	s := scheduler.New()
	a := &countingDevice{delay: 3}
	b := &countingDevice{delay: 5}
	s.Register(1, "a", a)
	s.Register(2, "b", b)

	if err := s.RunUntil(clocks.Clock(15)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.ticks) < 4 || len(b.ticks) < 2 {
		t.Fatalf("expected both devices to be stepped multiple times: a=%v b=%v", a.ticks, b.ticks)
	}
}

func TestStopHaltsRunEarly(t *testing.T) {
	s := scheduler.New()
	var dev *countingDevice
	dev = &countingDevice{delay: 1}
	stopper := &stoppingDevice{s: s, stopAfter: 3, countingDevice: dev}
	s.Register(1, "dev", stopper)

	if err := s.RunUntil(clocks.Clock(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.ticks) > 10 {
		t.Fatalf("expected Stop to halt the run well before the target clock, got %d steps", len(dev.ticks))
	}
}

type stoppingDevice struct {
	*countingDevice
	s         *scheduler.Scheduler
	stopAfter int
}

func (d *stoppingDevice) Step(clock clocks.Clock) clocks.ClockElapsed {
	delay := d.countingDevice.Step(clock)
	if len(d.ticks) >= d.stopAfter {
		d.s.Stop()
	}
	return delay
}
