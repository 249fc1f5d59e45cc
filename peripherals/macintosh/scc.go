package macintosh

// SCC is an unimplemented stand-in for the Zilog 8530 serial controller
// chip wired to the Macintosh's two RS-422 ports (modem and printer).
// Nothing in the supported boot path depends on serial I/O; this is a
// register-file-shaped no-op so the ROM's probe reads/writes don't fault
// the bus.
type SCC struct{}

func NewSCC() *SCC { return &SCC{} }

func (s *SCC) Length() uint64 { return 0x10 }

func (s *SCC) Read(addr uint64, out []byte) error {
	for i := range out {
		out[i] = 0
	}
	return nil
}

func (s *SCC) Write(addr uint64, in []byte) error { return nil }
