package bus

import "github.com/moaemu/moa/curated"

// RAM is a flat, read-write Addressable backing store. It is used for the
// Genesis's 64KiB main RAM, the Computie and TRS-80's work RAM, and
// cartridge-free scratch memory in tests.
type RAM struct {
	data []byte
}

// NewRAM allocates size bytes of RAM, zeroed.
func NewRAM(size uint64) *RAM {
	return &RAM{data: make([]byte, size)}
}

func (r *RAM) Length() uint64 { return uint64(len(r.data)) }

func (r *RAM) Read(addr uint64, out []byte) error {
	if addr+uint64(len(out)) > uint64(len(r.data)) {
		return curated.Errorf(curated.BusError, addr)
	}
	copy(out, r.data[addr:addr+uint64(len(out))])
	return nil
}

func (r *RAM) Write(addr uint64, in []byte) error {
	if addr+uint64(len(in)) > uint64(len(r.data)) {
		return curated.Errorf(curated.BusError, addr)
	}
	copy(r.data[addr:addr+uint64(len(in))], in)
	return nil
}

func (r *RAM) Peek(addr uint64) (uint8, error) {
	if addr >= uint64(len(r.data)) {
		return 0, curated.Errorf(curated.BusError, addr)
	}
	return r.data[addr], nil
}

func (r *RAM) Poke(addr uint64, value uint8) error {
	if addr >= uint64(len(r.data)) {
		return curated.Errorf(curated.BusError, addr)
	}
	r.data[addr] = value
	return nil
}

// ROM is a flat, read-only Addressable backing store loaded once at machine
// build time from a caller-supplied byte buffer (a cartridge image, a boot
// ROM). Writes are silently ignored rather than propagated as a bus error:
// real ROM simply has no write line, so a CPU write to it is not a fault
// condition, just a no-op.
type ROM struct {
	data []byte
}

// NewROM copies image into a new read-only device.
func NewROM(image []byte) *ROM {
	data := make([]byte, len(image))
	copy(data, image)
	return &ROM{data: data}
}

func (r *ROM) Length() uint64 { return uint64(len(r.data)) }

func (r *ROM) Read(addr uint64, out []byte) error {
	if addr+uint64(len(out)) > uint64(len(r.data)) {
		return curated.Errorf(curated.BusError, addr)
	}
	copy(out, r.data[addr:addr+uint64(len(out))])
	return nil
}

func (r *ROM) Write(addr uint64, in []byte) error {
	return nil
}

func (r *ROM) Peek(addr uint64) (uint8, error) {
	if addr >= uint64(len(r.data)) {
		return 0, curated.Errorf(curated.BusError, addr)
	}
	return r.data[addr], nil
}

func (r *ROM) Poke(addr uint64, value uint8) error {
	if addr >= uint64(len(r.data)) {
		return curated.Errorf(curated.BusError, addr)
	}
	r.data[addr] = value
	return nil
}
