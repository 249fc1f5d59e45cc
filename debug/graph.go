package debug

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// StructureGraph renders value's exported fields as a GraphViz dot graph to
// w. It takes any exported simulation state -- a *m68k.CPU, *z80.CPU, or
// *vdp.VDP all work unmodified, since memviz walks exported fields by
// reflection rather than needing a type-specific renderer. Unlike DumpM68k/
// DumpZ80's fixed text layout, this is meant for ad-hoc exploration of a
// whole struct graph (e.g. following VDP register state into CRAM) rather
// than the fixed register/stack/instruction layout.
func StructureGraph(w io.Writer, value interface{}) {
	memviz.Map(w, value)
}
