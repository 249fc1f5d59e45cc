package interrupts_test

import (
	"testing"

	"github.com/moaemu/moa/interrupts"
)

func TestHighestPendingAboveRespectsMask(t *testing.T) {
	c := interrupts.New()
	c.Set(4, true, 4, 0x70)
	c.Set(6, true, 6, 0x78)

	if _, _, ok := c.HighestPendingAbove(6); ok {
		t.Fatalf("priority 6 line should not be delivered when mask is 6")
	}

	p, v, ok := c.HighestPendingAbove(5)
	if !ok || p != 6 || v != 0x78 {
		t.Fatalf("expected priority 6 vector 0x78, got p=%d v=%#x ok=%v", p, v, ok)
	}
}

func TestDeassertClearsLine(t *testing.T) {
	c := interrupts.New()
	c.Set(4, true, 4, 0x70)
	c.Deassert(4)
	if _, _, ok := c.HighestPendingAbove(0); ok {
		t.Fatalf("expected no pending interrupt after deassert")
	}
}

func TestSetIsIdempotent(t *testing.T) {
	c := interrupts.New()
	c.Set(4, true, 4, 0x70)
	c.Set(4, true, 4, 0x70)
	p, v, ok := c.HighestPendingAbove(0)
	if !ok || p != 4 || v != 0x70 {
		t.Fatalf("expected single stable line, got p=%d v=%#x ok=%v", p, v, ok)
	}
}
