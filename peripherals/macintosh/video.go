package macintosh

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/host"
)

// screenBase and screenSize are the documented Macintosh 512k framebuffer
// location and dimensions: a fixed 1-bit-per-pixel bitmap living in ordinary
// work RAM, scanned out rather than held in a dedicated video peripheral.
const (
	screenBase             = 0x07a700
	screenWidth, screenHeight = 512, 342
)

const onColor = 0xc0c0c0

// MacVideo rasterizes the Macintosh's monochrome framebuffer out of the
// shared system bus into a host.Frame once per field, the same
// read-the-shared-bus-directly approach the Genesis VDP uses for its own
// frame buffer.
type MacVideo struct {
	bus   *bus.Bus
	frame *host.Frame
}

// NewMacVideo creates a MacVideo that scans systemBus at screenBase each
// Step.
func NewMacVideo(systemBus *bus.Bus) *MacVideo {
	return &MacVideo{bus: systemBus, frame: host.NewFrame(screenWidth, screenHeight)}
}

func (v *MacVideo) Step(_ clocks.Clock) clocks.ClockElapsed {
	f := host.NewFrame(screenWidth, screenHeight)
	var row [screenWidth / 8]byte
	for y := 0; y < screenHeight; y++ {
		addr := uint64(screenBase + y*(screenWidth/8))
		if err := v.bus.Read(addr, row[:]); err != nil {
			continue
		}
		for byteIdx, b := range row {
			for bit := 0; bit < 8; bit++ {
				x := byteIdx*8 + bit
				var c uint32
				if b&(1<<uint(7-bit)) != 0 {
					c = onColor
				}
				f.Set(x, y, c)
			}
		}
	}
	v.frame = f
	return clocks.MacVideoFrameDuration
}

func (v *MacVideo) Frame() *host.Frame { return v.frame }
