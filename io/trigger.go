package io

import (
	"io"
)

// Trigger paces a run: each step waits for one byte of input.
type Trigger struct {
	Input io.Reader
}

// Await blocks until one byte of input is available, and returns it.
// The end of the input is reported as io.EOF.
func (tr *Trigger) Await() (key byte, err error) {
	var one [1]byte
	_, err = io.ReadFull(tr.Input, one[:])
	if err != nil {
		return
	}

	key = one[0]
	return
}
