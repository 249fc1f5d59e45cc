package bus

// BusPort is a per-CPU adapter onto a Bus, parameterized by the CPU's
// physical address width and native data bus width. It fragments wide
// accesses into device-sized transactions in big-endian order and masks the
// address to the CPU's physical range before any lookup happens.
//
// BusPort is kept distinct from Bus itself: the width-adaptation policy
// belongs to the CPU, not the memory fabric, which makes it straightforward
// to attach another CPU with a different data width to the same Bus (as
// happens with the Z80's banked window onto the Genesis's 68k bus).
type BusPort struct {
	bus       *Bus
	addrMask  uint64
	dataWidth int // bytes per native transaction: 2 for the 68000's 16-bit bus, 1 for the Z80
}

// NewBusPort creates a BusPort over bus, masking addresses to addrWidthBits
// bits and fragmenting accesses into dataWidthBytes-sized transactions.
func NewBusPort(b *Bus, addrWidthBits, dataWidthBytes int) *BusPort {
	var mask uint64
	if addrWidthBits >= 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << addrWidthBits) - 1
	}
	return &BusPort{bus: b, addrMask: mask, dataWidth: dataWidthBytes}
}

// Bus returns the underlying Bus, for callers (DMA engines, debuggers) that
// need to bypass the CPU's width adaptation and address entirely.
func (p *BusPort) Bus() *Bus {
	return p.bus
}

// Mask applies the port's address mask without performing any access.
func (p *BusPort) Mask(addr uint64) uint64 {
	return addr & p.addrMask
}

// Read fragments a read of n bytes starting at addr into ceil(n/dataWidth)
// sub-accesses at addr, addr+dataWidth, ... (each masked; addr itself is
// not aligned), and concatenates the results in big-endian order. A 32-bit
// read on a 16-bit-data BusPort is always exactly two 16-bit accesses at
// consecutive addresses; when n is not a multiple of the data width the
// last sub-access is shorter.
func (p *BusPort) Read(addr uint64, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	a := p.Mask(addr)

	for len(out) < n {
		chunk := p.dataWidth
		if remaining := n - len(out); remaining < chunk {
			chunk = remaining
		}
		buf := make([]byte, chunk)
		if err := p.bus.Read(a, buf); err != nil {
			return nil, err
		}
		out = append(out, buf...)
		a = p.Mask(a + uint64(p.dataWidth))
	}

	return out, nil
}

// Write fragments a write of data into dataWidth-sized sub-accesses the same
// way Read fragments reads, preserving big-endian order across the split.
func (p *BusPort) Write(addr uint64, data []byte) error {
	a := p.Mask(addr)
	for off := 0; off < len(data); off += p.dataWidth {
		end := off + p.dataWidth
		if end > len(data) {
			end = len(data)
		}
		if err := p.bus.Write(a, data[off:end]); err != nil {
			return err
		}
		a = p.Mask(a + uint64(p.dataWidth))
	}
	return nil
}

// ReadByte, ReadWordBE and ReadLongBE are convenience wrappers for the CPU
// cores' most common access sizes.
func (p *BusPort) ReadByte(addr uint64) (uint8, error) {
	b, err := p.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *BusPort) ReadWordBE(addr uint64) (uint16, error) {
	b, err := p.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (p *BusPort) ReadLongBE(addr uint64) (uint32, error) {
	b, err := p.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (p *BusPort) WriteByte(addr uint64, v uint8) error {
	return p.Write(addr, []byte{v})
}

func (p *BusPort) WriteWordBE(addr uint64, v uint16) error {
	return p.Write(addr, []byte{byte(v >> 8), byte(v)})
}

func (p *BusPort) WriteLongBE(addr uint64, v uint32) error {
	return p.Write(addr, []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
