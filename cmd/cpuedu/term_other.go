//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package main

import (
	"errors"
)

func enterCbreakTerm() error {
	return errors.ErrUnsupported
}

func exitCbreakTerm() {
}
