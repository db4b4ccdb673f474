package io

import (
	"io"
)

const (
	// EEPROM_SIZE is the capacity in bytes of a 25LC256.
	EEPROM_SIZE = 32768
	// EEPROM_ADDR_MASK masks an address to the device's 15 address bits.
	EEPROM_ADDR_MASK = EEPROM_SIZE - 1
	// EEPROM_PAGE_SIZE is the largest write the device commits at once.
	EEPROM_PAGE_SIZE = 64
	// EEPROM_ERASED is the content of a never written cell.
	EEPROM_ERASED = 0xff
)

// Eeprom models a 25LC256 SPI EEPROM as byte addressable storage.
// Block writes are committed one page at a time, and never cross a
// page boundary.
type Eeprom struct {
	Data       []uint8 // Device content, EEPROM_SIZE bytes once reset.
	PageWrites int     // Number of page write cycles committed.
}

var _ Storage = (*Eeprom)(nil)

// Reset erases the device if it has no content yet, and clears the
// page write counter.
func (ee *Eeprom) Reset() {
	if len(ee.Data) != EEPROM_SIZE {
		data := make([]uint8, EEPROM_SIZE)
		n := copy(data, ee.Data)
		for i := n; i < EEPROM_SIZE; i++ {
			data[i] = EEPROM_ERASED
		}
		ee.Data = data
	}

	ee.PageWrites = 0
}

func (ee *Eeprom) ensure() {
	if len(ee.Data) != EEPROM_SIZE {
		pages := ee.PageWrites
		ee.Reset()
		ee.PageWrites = pages
	}
}

// Read returns the byte at addr. Address bits above the device's
// capacity are ignored.
func (ee *Eeprom) Read(addr uint16) uint8 {
	ee.ensure()

	return ee.Data[addr&EEPROM_ADDR_MASK]
}

// Write sets the byte at addr, using one page write cycle.
func (ee *Eeprom) Write(addr uint16, value uint8) {
	ee.ensure()

	ee.Data[addr&EEPROM_ADDR_MASK] = value
	ee.PageWrites++
}

// ReadBlock reads sequentially from addr. Reading past the end of the
// device returns the bytes up to the end and io.EOF.
func (ee *Eeprom) ReadBlock(addr uint16, buf []uint8) (n int, err error) {
	ee.ensure()

	start := int(addr & EEPROM_ADDR_MASK)
	n = copy(buf, ee.Data[start:])
	if n < len(buf) {
		err = io.EOF
	}

	return
}

// WriteBlock writes buf from addr, split at page boundaries. A block
// that would run past the end of the device is not written at all.
func (ee *Eeprom) WriteBlock(addr uint16, buf []uint8) (n int, err error) {
	ee.ensure()

	start := int(addr & EEPROM_ADDR_MASK)
	if start+len(buf) > EEPROM_SIZE {
		err = ErrStorageFull
		return
	}

	for n < len(buf) {
		pos := start + n
		chunk := min(EEPROM_PAGE_SIZE-(pos%EEPROM_PAGE_SIZE), len(buf)-n)
		copy(ee.Data[pos:pos+chunk], buf[n:n+chunk])
		ee.PageWrites++
		n += chunk
	}

	return
}

// Unmarshal loads device content from a hex image, replacing any existing
// content. Cells past the end of the image are erased.
func (ee *Eeprom) Unmarshal(file io.Reader) (err error) {
	data, err := DecodeImage(file)
	if err != nil {
		return
	}

	if len(data) > EEPROM_SIZE {
		err = ErrStorageFull
		return
	}

	ee.Data = data
	ee.Reset()

	return
}

// Marshal writes the device content as a hex image.
func (ee *Eeprom) Marshal(file io.Writer) (err error) {
	ee.ensure()

	return EncodeImage(file, ee.Data)
}
