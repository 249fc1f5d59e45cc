// Package host defines the capability set a machine builder consumes from
// its embedder: window/frame registration, controller and keyboard event
// sinks, PTY creation for Computie serial redirection, and audio sinks. The
// core never calls anything outside this contract, and this package ships
// no concrete implementation of it -- a GUI/audio frontend, a PTY bridge,
// and ROM loaders are all out of scope and supplied by the embedder.
package host

// FrameSource is polled by the Host at its own cadence to obtain the most
// recently published video frame. A machine builder registers one per
// display-producing peripheral (the Genesis's VDP, the TRS-80's Model I
// video and the Macintosh 512k's video scanner; nothing on Computie
// produces a Frame).
type FrameSource interface {
	Frame() *Frame
}

// ControllerEvent describes a single button transition delivered to a
// registered controller sink.
type ControllerEvent struct {
	Kind    string // the controller kind string registered with RegisterController
	Button  int
	Pressed bool
}

// ControllerSink receives controller events the Host's input layer decodes
// from whatever device it is reading from (keyboard remap, game pad, a
// network bridge).
type ControllerSink interface {
	Controller(ev ControllerEvent)
}

// KeyEvent is a raw key transition, used by the TRS-80 machine, which reads
// a keyboard matrix directly rather than through a controller abstraction.
type KeyEvent struct {
	Code    int
	Pressed bool
}

// KeyboardSink receives raw key events.
type KeyboardSink interface {
	Key(ev KeyEvent)
}

// AudioSink receives interleaved sample frames from a peripheral that
// produces audio (the Genesis's YM2612/PSG, scheduled as ordinary
// Steppable devices). This core does not implement sample synthesis
// itself -- cycle-accurate audio is an explicit non-goal -- but the sink
// contract exists so a Host that does synthesize can be wired to a
// peripheral stub's output without a core-side dependency on any audio
// library.
type AudioSink interface {
	Samples(frame []float32)
}

// Capability is the full set of registration points a machine builder may
// call during machine construction. A Host implements this; the core only
// ever holds the interface.
type Capability interface {
	// AddWindow registers a frame producer the Host will poll for display.
	AddWindow(source FrameSource)

	// RegisterController supplies a sink for controller events of the
	// given kind (e.g. "genesis3button").
	RegisterController(kind string, sink ControllerSink)

	// RegisterKeyboard supplies a sink for raw key events.
	RegisterKeyboard(sink KeyboardSink)

	// CreatePTY requests a named pseudo-terminal for Computie serial
	// redirection, returning a byte stream the machine's UART device reads
	// and writes through.
	CreatePTY(name string) (PTY, error)

	// AddAudioSource registers a peripheral's audio output and returns the
	// sink it should write interleaved samples into.
	AddAudioSource(channels int, sampleRate int) AudioSink
}

// PTY is the minimal byte-stream contract a Computie UART device needs;
// the embedder owns the actual pseudo-terminal allocation and SLIP/serial
// framing.
type PTY interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
