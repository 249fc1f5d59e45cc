package curated

// Pattern strings for the error kinds enumerated by the simulation core.
// These are used as the "pattern" argument to Errorf so that callers further
// up the stack can test for a specific kind with Is()/Has() without caring
// about the formatted message.
const (
	// BusError is raised when a CPU or DMA access targets an address with no
	// mapped Addressable, or when a BusPort access straddles two windows in
	// a way that cannot be serviced.
	BusError = "bus error at %#08x"

	// AddressError is the pattern for a misaligned word/long access. The
	// MC68000 core does not check alignment, so nothing in this tree raises
	// it.
	AddressError = "address error at %#08x"

	// IllegalInstruction is raised when a decoded opcode has no defined
	// behaviour and does not fall into the line-A or line-F reserved ranges.
	IllegalInstruction = "illegal instruction %#04x at %#08x"

	// PrivilegeViolation is the pattern for user-mode code attempting a
	// supervisor-only operation. The MC68000 core handles that case through
	// its privilege-violation exception vector and does not return this
	// error.
	PrivilegeViolation = "privilege violation at %#08x"

	// DivisionByZero is the pattern for DIVS/DIVU with a zero divisor. The
	// MC68000 core handles that case through its divide-by-zero exception
	// vector and does not return this error.
	DivisionByZero = "division by zero at %#08x"

	// MalformedTransfer is the pattern for a DMA or block-transfer
	// descriptor with unrecognised mode bits. The VDP decodes every mode-bit
	// combination to some transfer, so nothing in this tree raises it.
	MalformedTransfer = "malformed transfer: %s"

	// ConfigurationError is raised at machine-build time when two bus
	// windows overlap. This is fatal and is never seen by a running machine.
	ConfigurationError = "configuration error: %s"

	// DeviceError wraps a failure reported by a device's Step, which halts
	// the scheduler.
	DeviceError = "device %q: %s"
)
