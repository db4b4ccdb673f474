// Package io provides the collaborators around the educational computer:
// byte addressable storage media, image loaders, the step trigger and
// the state console.
package io

// Storage is a byte addressable persistent medium, such as a serial
// EEPROM. Block operations follow io.ReaderAt conventions: a short
// count always comes with an error.
type Storage interface {
	// Read returns the byte at an address.
	Read(addr uint16) uint8
	// Write sets the byte at an address.
	Write(addr uint16, value uint8)
	// ReadBlock reads len(buf) bytes starting at addr.
	ReadBlock(addr uint16, buf []uint8) (n int, err error)
	// WriteBlock writes buf starting at addr.
	WriteBlock(addr uint16, buf []uint8) (n int, err error)
}
