// Package bus is used throughout the simulation to define how a region of
// memory or a peripheral's register file is reached from a CPU.
//
// Addressable is the basic contract: given a device-relative address, read
// or write some bytes. A Bus collects many Addressable devices into a single
// sorted, non-overlapping window table and dispatches to the right one.
//
// BusPort sits between a CPU core and a Bus: it knows the CPU's physical
// address width and native transaction size, and fragments wider accesses
// (a 32-bit move on a 16-bit data bus) into the right number of sub-accesses
// in the right order. Keeping this adaptation out of Bus itself means the
// same Bus can be shared between CPUs of different widths, which is exactly
// what the Genesis's Z80-bridge window onto the 68k bus requires.
package bus
