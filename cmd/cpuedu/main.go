// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/ezrec/cpuedu/cpu"
	"github.com/ezrec/cpuedu/emulator"
	"github.com/ezrec/cpuedu/io"
)

// defineFlags collects repeated -D NAME=VALUE options.
type defineFlags map[string]string

func (df defineFlags) String() string {
	var defs []string
	for name, value := range df {
		defs = append(defs, name+"="+value)
	}
	return strings.Join(defs, ",")
}

func (df defineFlags) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		return fmt.Errorf("expected NAME=VALUE, got '%v'", text)
	}
	df[name] = value
	return nil
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	atexit.Exit(1)
}

// imageStore is where images are saved to and loaded from.
type imageStore struct {
	io.Loader
	eeprom *io.Eeprom
	path   string
}

// newImageStore uses the EEPROM image at eepromPath if set, or the
// directory holding imagePath.
func newImageStore(imagePath string, eepromPath string) (store *imageStore, name string, err error) {
	if len(eepromPath) == 0 {
		dir := filepath.Dir(imagePath)
		store = &imageStore{
			Loader: &io.FileLoader{Dir: os.DirFS(dir), Out: io.DirFS(dir)},
		}
		name = filepath.Base(imagePath)
		return
	}

	ee := &io.Eeprom{}
	inf, err := os.Open(eepromPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ee.Reset()
		err = nil
	case err != nil:
		return
	default:
		defer inf.Close()
		err = ee.Unmarshal(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", eepromPath, err)
			return
		}
	}

	store = &imageStore{
		Loader: &io.EepromLoader{Storage: ee},
		eeprom: ee,
		path:   eepromPath,
	}
	name = imagePath
	return
}

// Store saves the image, and writes back the EEPROM image if one is used.
func (store *imageStore) Store(name string, image []uint8) (err error) {
	err = store.Loader.Store(name, image)
	if err != nil || store.eeprom == nil {
		return
	}

	ouf, err := os.Create(store.path)
	if err != nil {
		return
	}

	err = store.eeprom.Marshal(ouf)
	if err != nil {
		ouf.Close()
		return
	}

	return ouf.Close()
}

func main() {
	var compile string
	var image string
	var eeprom string
	var save bool
	var listing bool
	var limit int
	var free bool
	var quiet bool
	var verbose bool
	defines := defineFlags{}

	flag.StringVar(&compile, "c", "", "Assembly source file to compile")
	flag.StringVar(&image, "m", "", "Memory image to save to, or run from")
	flag.StringVar(&eeprom, "e", "", "EEPROM image holding the memory image")
	flag.BoolVar(&save, "s", false, "Save the memory image, do not execute")
	flag.BoolVar(&listing, "l", false, "Print the program listing")
	flag.IntVar(&limit, "n", 0, "Stop after this many ticks (0 is no limit)")
	flag.BoolVar(&free, "a", false, "Run freely, without waiting for a key per tick")
	flag.BoolVar(&quiet, "q", false, "Only print the final machine state")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(defines, "D", "Predefine an equate, as NAME=VALUE (repeatable)")

	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix(filepath.Base(os.Args[0]) + ": ")

	if flag.NArg() != 0 {
		fatalf("Unknown arguments: %v", flag.Args())
	}

	if len(compile) == 0 && len(image) == 0 {
		fatalf("One of -c or -m is required")
	}

	if save && len(image) == 0 {
		fatalf("-s requires -m")
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	var store *imageStore
	var name string
	if len(image) != 0 {
		var err error
		store, name, err = newImageStore(image, eeprom)
		if err != nil {
			fatalf("%v", err)
		}
	}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			fatalf("%v", err)
		}

		asm := &cpu.Assembler{Verbose: verbose}
		for equ, value := range emu.Defines() {
			asm.Predefine(equ, value)
		}
		for equ, value := range defines {
			asm.Predefine(equ, value)
		}

		prog, err := asm.Parse(inf)
		inf.Close()
		if err != nil {
			fatalf("%v: %v", compile, err)
		}
		emu.Program = prog

		if store != nil {
			err = store.Store(name, prog.Binary())
			if err != nil {
				fatalf("%v", err)
			}
		}
	} else {
		bin, err := store.Load(name)
		if err != nil {
			fatalf("%v", err)
		}
		emu.Image = bin
		emu.Program = cpu.DisassembleProgram(bin)
	}

	if listing {
		err := emu.Program.Listing(os.Stdout)
		if err != nil {
			fatalf("%v", err)
		}
	}

	if save {
		atexit.Exit(0)
	}

	console := &io.Console{Output: os.Stdout, Quiet: quiet}
	emu.Observer = console
	emu.Limit = limit

	if !free {
		emu.Trigger = &io.Trigger{Input: os.Stdin}
		err := enterCbreakTerm()
		if err == nil {
			atexit.Register(exitCbreakTerm)
		} else if verbose {
			log.Printf("stdin: %v, reading keys by line", err)
		}
	}

	err := emu.Reset()
	if err != nil {
		fatalf("%v", err)
	}

	err = emu.Run()
	console.Flush()
	if err != nil {
		fatalf("%v", err)
	}

	if verbose {
		log.Printf("%d instructions, %d ticks", console.Count(), emu.Ticks())
	}

	atexit.Exit(0)
}
