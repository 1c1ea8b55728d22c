// Package binpatch substitutes fixed-width tokens and float markers inside
// opaque byte buffers without changing their length.
//
// Every function is pure: the input buffer is never modified and the patched
// copy is returned together with the number of substitutions made. A token
// that does not occur is not an error; templates of different variants carry
// different subsets of tokens and callers apply the full set to each.
package binpatch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"autovideo/internal/identifier"
)

// ErrWidthMismatch reports a replacement that cannot be encoded to the width
// of the token it replaces.
var ErrWidthMismatch = errors.New("replacement wider than token")

// ReplaceAll overwrites every non-overlapping occurrence of token, scanning
// left to right and resuming after each replaced region.
func ReplaceAll(buf []byte, token, replacement string) ([]byte, int, error) {
	return replace(buf, token, replacement, -1)
}

// ReplaceFirst overwrites only the first occurrence of token.
func ReplaceFirst(buf []byte, token, replacement string) ([]byte, int, error) {
	return replace(buf, token, replacement, 1)
}

func replace(buf []byte, token, replacement string, limit int) ([]byte, int, error) {
	out := bytes.Clone(buf)
	if token == "" {
		return out, 0, nil
	}
	encoded := identifier.CrossRef(replacement, len(token))
	if len(encoded) != len(token) {
		return out, 0, fmt.Errorf("%w: %q (%d bytes) for token %q (%d bytes)", ErrWidthMismatch, replacement, len(encoded), token, len(token))
	}
	needle := []byte(token)
	count := 0
	pos := 0
	for limit < 0 || count < limit {
		idx := bytes.Index(out[pos:], needle)
		if idx < 0 {
			break
		}
		start := pos + idx
		copy(out[start:start+len(needle)], encoded)
		pos = start + len(needle)
		count++
	}
	return out, count, nil
}

// ReplaceFloat overwrites every 4-byte window, at any byte offset, whose
// little-endian float32 value equals target exactly. Matches are located in
// the input buffer, so a replacement never creates a new match.
func ReplaceFloat(buf []byte, target, replacement float32) ([]byte, int) {
	out := bytes.Clone(buf)
	var encoded [4]byte
	binary.LittleEndian.PutUint32(encoded[:], math.Float32bits(replacement))
	offsets := FindFloat(buf, target)
	for _, off := range offsets {
		copy(out[off:off+4], encoded[:])
	}
	return out, len(offsets)
}

// FindFloat returns the offsets at which target occurs as a little-endian float32.
func FindFloat(buf []byte, target float32) []int {
	var offsets []int
	for i := 0; i+4 <= len(buf); i++ {
		if math.Float32frombits(binary.LittleEndian.Uint32(buf[i:i+4])) == target {
			offsets = append(offsets, i)
		}
	}
	return offsets
}
