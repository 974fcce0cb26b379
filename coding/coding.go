// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level QR coding details: version
// selection, the byte mode bit stream, Reed-Solomon blocks, function
// patterns, data placement, masking and mask selection.
package coding // import "github.com/unixdj/dynqr/coding"

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/unixdj/dynqr/gf256"
)

var (
	ErrInvalidInput = errors.New("qr: empty data")
	ErrDataTooLong  = errors.New("qr: data too long")
	ErrLevel        = errors.New("qr: invalid level")
	ErrVersion      = errors.New("qr: invalid version")
)

// Field is the field for QR error correction.
var Field = gf256.QR()

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 modules on a side.
// The larger the version, the more information the code can store.
type Version int

// Code versions.
const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

func (v Version) valid() bool { return MinVersion <= v && v <= MaxVersion }

// Size returns the number of modules on a side.
func (v Version) Size() int { return int(v)*4 + 17 }

// QR version size classes.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
)

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// Byte mode indicator and count field lengths per size class.
const byteIndicator = 4

var byteCountLength = [3]int{8, 16, 16}

// dataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) dataBytes(l Level) int {
	vt := &vtab[v]
	lev := vt.level[l]
	return vt.bytes - lev.nblock*lev.check
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int {
	return v.dataBytes(l) * 8
}

// ByteLength returns the encoded length in bits of n bytes in byte
// mode at version v, including the header.
func (v Version) ByteLength(n int) int {
	return 4 + byteCountLength[v.SizeClass()] + n*8
}

// MaxBytes returns the number of bytes that fit in a single byte mode
// segment of a QR code with the given version and level.
func MaxBytes(v Version, l Level) int {
	n := (v.DataBits(l) - v.ByteLength(0)) / 8
	// the count field limits version 1-9 segments to 255 bytes
	return min(n, 1<<byteCountLength[v.SizeClass()]-1)
}

// FitVersion returns the smallest version holding n bytes at level l.
func FitVersion(n int, l Level) (Version, error) {
	if l < L || l > H {
		return 0, ErrLevel
	}
	for v := MinVersion; v <= MaxVersion; v++ {
		if n <= MaxBytes(v, l) {
			return v, nil
		}
	}
	return 0, &CapacityError{Len: n, Max: MaxBytes(MaxVersion, l),
		Version: MaxVersion, Level: l}
}

// CapacityError reports data exceeding the capacity of a QR code.
type CapacityError struct {
	Len, Max int // data and capacity length in bytes
	Version
	Level
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("qr: cannot encode %d bytes into %d-byte "+
		"version %s level %s code", e.Len, e.Max, e.Version, e.Level)
}

// Is reports whether target is ErrDataTooLong.
func (e *CapacityError) Is(target error) bool { return target == ErrDataTooLong }

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if L <= l && l <= H {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// ParseLevel parses a level name, "L", "M", "Q" or "H" in either case.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "L", "l":
		return L, nil
	case "M", "m":
		return M, nil
	case "Q", "q":
		return Q, nil
	case "H", "h":
		return H, nil
	}
	return 0, ErrLevel
}

// A version describes metadata associated with a version.
type version struct {
	align   []int // alignment pattern centres
	bytes   int   // total codewords
	pattern int   // version information, 0 below version 7
	level   [4]level
}

type level struct {
	nblock int // number of blocks
	check  int // check bytes per block
}
