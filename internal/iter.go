package internal

import (
	"iter"
)

// Concat2 chains dual-value iterators into one sequence.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Addressed yields each byte of data paired with its address, starting at base.
// Addresses wrap at 16 bits.
func Addressed(base uint16, data []uint8) iter.Seq2[uint16, uint8] {
	return func(yield func(uint16, uint8) bool) {
		for n, b := range data {
			if !yield(base+uint16(n), b) {
				return
			}
		}
	}
}
