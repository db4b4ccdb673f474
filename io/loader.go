package io

import (
	"encoding/binary"
	"io/fs"
)

// Loader supplies and persists memory images by name.
type Loader interface {
	// Load returns the named image.
	Load(name string) (image []uint8, err error)
	// Store saves an image under a name.
	Store(name string, image []uint8) (err error)
}

// FileLoader keeps images as hex text files.
type FileLoader struct {
	Dir fs.FS    // Where images are loaded from.
	Out CreateFS // Where images are stored to. If nil, Store fails.
}

var _ Loader = (*FileLoader)(nil)

// Load reads and decodes an image file.
func (fl *FileLoader) Load(name string) (image []uint8, err error) {
	defer func() {
		if err != nil {
			err = ErrImageLoad{Name: name, Err: err}
		}
	}()

	file, err := fl.Dir.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	image, err = DecodeImage(file)
	return
}

// Store encodes an image to a file.
func (fl *FileLoader) Store(name string, image []uint8) (err error) {
	defer func() {
		if err != nil {
			err = ErrImageLoad{Name: name, Err: err}
		}
	}()

	if fl.Out == nil {
		err = ErrReadOnly
		return
	}

	if len(image) > IMAGE_SIZE {
		err = ErrImageTooLarge
		return
	}

	file, err := fl.Out.Create(name)
	if err != nil {
		return
	}

	err = EncodeImage(file, image)
	if err != nil {
		file.Close()
		return
	}

	return file.Close()
}

// EepromLoader keeps a single image in byte addressable storage.
//
// The image is stored from address 0 as a big endian 16-bit length, a
// name length byte, the name, and the image bytes.
type EepromLoader struct {
	Storage Storage
}

var _ Loader = (*EepromLoader)(nil)

const eepromHeader = 3

// Load reads the stored image if its name matches. Any other name is
// reported as fs.ErrNotExist.
func (el *EepromLoader) Load(name string) (image []uint8, err error) {
	defer func() {
		if err != nil {
			err = ErrImageLoad{Name: name, Err: err}
		}
	}()

	var header [eepromHeader]uint8
	_, err = el.Storage.ReadBlock(0, header[:])
	if err != nil {
		return
	}

	size := int(binary.BigEndian.Uint16(header[0:2]))
	stored := make([]uint8, header[2])
	_, err = el.Storage.ReadBlock(eepromHeader, stored)
	if err != nil {
		return
	}

	if string(stored) != name {
		err = fs.ErrNotExist
		return
	}

	image = make([]uint8, size)
	_, err = el.Storage.ReadBlock(uint16(eepromHeader+len(stored)), image)
	if err != nil {
		image = nil
		return
	}

	return
}

// Store replaces the stored image.
func (el *EepromLoader) Store(name string, image []uint8) (err error) {
	defer func() {
		if err != nil {
			err = ErrImageLoad{Name: name, Err: err}
		}
	}()

	if len(name) > 0xff {
		err = ErrImageName
		return
	}

	if len(image) > 0xffff {
		err = ErrImageTooLarge
		return
	}

	block := make([]uint8, eepromHeader, eepromHeader+len(name)+len(image))
	binary.BigEndian.PutUint16(block[0:2], uint16(len(image)))
	block[2] = uint8(len(name))
	block = append(block, name...)
	block = append(block, image...)

	_, err = el.Storage.WriteBlock(0, block)
	return
}
