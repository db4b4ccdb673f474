//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

var termRestore *unix.Termios

// enterCbreakTerm makes each key press available without echo or line
// editing, so that one key press is one step. It fails if stdin is not
// a terminal.
func enterCbreakTerm() (err error) {
	termios, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), ioctlGetTermios)
	if err != nil {
		return
	}

	restore := *termios
	termstate := *termios

	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(int(os.Stdin.Fd()), ioctlSetTermios, &termstate)
	if err != nil {
		return
	}

	termRestore = &restore
	return
}

// exitCbreakTerm restores the terminal, if it was changed.
func exitCbreakTerm() {
	if termRestore == nil {
		return
	}

	_ = unix.IoctlSetTermios(int(os.Stdin.Fd()), ioctlSetTermios, termRestore)
	termRestore = nil
}
