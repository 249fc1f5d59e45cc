package curated_test

import (
	"testing"

	"github.com/moaemu/moa/curated"
)

func TestIsMatchesPattern(t *testing.T) {
	err := curated.Errorf(curated.BusError, 0x00ff0000)
	if !curated.Is(err, curated.BusError) {
		t.Fatalf("expected error to match BusError pattern")
	}
	if curated.Is(err, curated.AddressError) {
		t.Fatalf("did not expect error to match AddressError pattern")
	}
}

func TestHasTraversesWrappedChain(t *testing.T) {
	inner := curated.Errorf(curated.BusError, 0x1000)
	outer := curated.Errorf("device %q: %v", "vdp", inner)
	if !curated.Has(outer, curated.BusError) {
		t.Fatalf("expected Has to find BusError nested in the chain")
	}
}

func TestDeduplicatesAdjacentMessage(t *testing.T) {
	inner := curated.Errorf(curated.BusError, 0x2000)
	outer := curated.Errorf("%v", inner)
	if outer.Error() != inner.Error() {
		t.Fatalf("expected identical adjacent messages to collapse, got %q", outer.Error())
	}
}
