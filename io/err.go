package io

import (
	"errors"

	"github.com/ezrec/cpuedu/translate"
)

var f = translate.From

var (
	// Storage errors
	ErrStorageFull = errors.New(f("storage full"))

	// Image errors
	ErrImageTooLarge = errors.New(f("image exceeds 65536 bytes"))
	ErrImageName     = errors.New(f("image name longer than 255 bytes"))
	ErrReadOnly      = errors.New(f("loader is read only"))
)

// ErrMalformedImageByte is a token in an image file that is not a hex byte.
type ErrMalformedImageByte string

func (err ErrMalformedImageByte) Error() string {
	return f("malformed image byte '%v'", string(err))
}

// ErrImageLoad is a failure to load or store a named image.
type ErrImageLoad struct {
	Name string
	Err  error
}

func (err ErrImageLoad) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err ErrImageLoad) Unwrap() error {
	return err.Err
}
