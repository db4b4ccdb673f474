package io

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	// IMAGE_SIZE is the largest image, one full instruction memory.
	IMAGE_SIZE = 1 << 16
	// IMAGE_LINE is the number of bytes per line of an encoded image.
	IMAGE_LINE = 16
)

// EncodeImage writes an image as whitespace separated two digit hex bytes,
// IMAGE_LINE bytes per line.
func EncodeImage(w io.Writer, image []uint8) (err error) {
	bw := bufio.NewWriter(w)

	for n, b := range image {
		sep := " "
		if n%IMAGE_LINE == IMAGE_LINE-1 || n == len(image)-1 {
			sep = "\n"
		}
		_, err = fmt.Fprintf(bw, "%02X%s", b, sep)
		if err != nil {
			return
		}
	}

	return bw.Flush()
}

// DecodeImage reads an image written by EncodeImage. Any whitespace may
// separate tokens, and a token may hold more than one byte as long as it
// has an even number of hex digits.
func DecodeImage(r io.Reader) (image []uint8, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	image = []uint8{}
	for scanner.Scan() {
		word := scanner.Text()
		data, _err := hex.DecodeString(word)
		if _err != nil {
			err = ErrMalformedImageByte(word)
			image = nil
			return
		}
		if len(image)+len(data) > IMAGE_SIZE {
			err = ErrImageTooLarge
			image = nil
			return
		}
		image = append(image, data...)
	}

	err = scanner.Err()
	if err != nil {
		image = nil
	}

	return
}
