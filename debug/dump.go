// Package debug renders the built-in debugger dumps described for
// unrecoverable machine state: a CPU core's registers, the active stack
// region, and, for a halted core, the PC and error of the fault, all to a plain
// io.Writer. A separate structural dump renders a CPU or VDP's exported
// state as a GraphViz graph for more exploratory inspection.
package debug

import (
	"fmt"
	"io"

	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/cpu/m68k"
	"github.com/moaemu/moa/cpu/z80"
)

// stackWords is how many words of stack either dump shows in total, half
// below the current stack pointer and the rest from it upwards.
const stackWords = 8

// DumpM68k writes the 68000/68010 core's data/address registers, SR, PC,
// the words around the stack pointer, and the fault PC and error (if the
// core is Halted) to w. mem is peeked non-destructively, so calling
// this does not disturb any device with read side effects.
func DumpM68k(w io.Writer, c *m68k.CPU, mem *bus.Bus) {
	fmt.Fprintf(w, "m68k: %s  PC=%08x  SR=%04x\n", c.Status, c.PC, c.SR.Value())
	for i := 0; i < 8; i++ {
		fmt.Fprintf(w, "  D%d=%08x", i, c.D[i])
	}
	fmt.Fprintln(w)
	for i := 0; i < 7; i++ {
		fmt.Fprintf(w, "  A%d=%08x", i, c.GetA(i))
	}
	fmt.Fprintf(w, "  A7=%08x (SSP=%08x USP=%08x)\n", c.A7(), c.SSP, c.USP)

	fmt.Fprintf(w, "stack @ %08x:\n", c.A7())
	dumpWordsBE(w, mem, uint64(c.A7()), stackWords)

	if c.Status == m68k.Halted {
		fmt.Fprintf(w, "halted at PC=%08x: %v\n", c.FaultPC, c.Fault)
	}
}

// DumpZ80 writes the Z80 core's registers (including the shadow set),
// PC/SP, the big-endian words around SP, and the fault PC and error (if
// the core is Halted) to w.
func DumpZ80(w io.Writer, c *z80.CPU, mem *bus.Bus) {
	fmt.Fprintf(w, "z80: %s  PC=%04x  SP=%04x\n", c.Status, c.PC, c.SP)
	fmt.Fprintf(w, "  A=%02x F=%02x BC=%04x DE=%04x HL=%04x IX=%04x IY=%04x\n",
		c.A, c.F, c.BC(), c.DE(), c.HL(), c.IX, c.IY)
	fmt.Fprintf(w, "  A'=%02x F'=%02x BC'=%04x DE'=%04x HL'=%04x\n",
		c.A_, c.F_, uint16(c.B_)<<8|uint16(c.C_), uint16(c.D_)<<8|uint16(c.E_), uint16(c.H_)<<8|uint16(c.L_))
	fmt.Fprintf(w, "  I=%02x R=%02x IFF1=%v IFF2=%v IM=%d\n", c.I, c.R, c.IFF1, c.IFF2, c.IM)

	fmt.Fprintf(w, "stack @ %04x:\n", c.SP)
	dumpWordsBE(w, mem, uint64(c.SP), stackWords)

	if c.Status == z80.Halted {
		fmt.Fprintf(w, "halted at PC=%04x: %v\n", c.FaultPC, c.Fault)
	}
}

// dumpWordsBE peeks n big-endian words straddling addr (half above, half
// below) and prints them as one line. A peek that fails (an unmapped
// stack, most likely a misconfigured machine) prints "????" for that word
// rather than aborting the dump.
func dumpWordsBE(w io.Writer, mem *bus.Bus, addr uint64, n int) {
	if mem == nil {
		fmt.Fprintln(w, "  (no memory attached)")
		return
	}
	start := addr - uint64(n/2)*2
	for i := 0; i < n; i++ {
		a := start + uint64(i)*2
		hi, errHi := mem.Peek(a)
		lo, errLo := mem.Peek(a + 1)
		marker := "  "
		if a == addr {
			marker = "->"
		}
		if errHi != nil || errLo != nil {
			fmt.Fprintf(w, "  %s %08x: ????\n", marker, a)
			continue
		}
		fmt.Fprintf(w, "  %s %08x: %04x\n", marker, a, uint16(hi)<<8|uint16(lo))
	}
}
