// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// A Matrix is a square grid of QR modules.
//
// Bitmap and Reserved are bit-packed rows of Stride bytes, most
// significant bit first.  Reserved marks function pattern modules
// (finder, separator, timing and alignment patterns, format and version
// information, and the dark module); it is shared between a Matrix and
// its clones and must not be modified.
type Matrix struct {
	Version  Version // QR version
	Level    Level   // error correction level
	Mask     int     // mask pattern, -1 if not masked
	Size     int     // number of modules on a side
	Stride   int     // number of bytes per row
	Bitmap   []byte  // 1 is dark, 0 is light
	Reserved []byte  // 1 is function pattern, 0 is data
}

func newMatrix(v Version, l Level, p *Plan) *Matrix {
	m := &Matrix{
		Version:  v,
		Level:    l,
		Mask:     -1,
		Size:     p.Size,
		Stride:   p.Stride,
		Bitmap:   make([]byte, len(p.Pattern)),
		Reserved: p.Map,
	}
	copy(m.Bitmap, p.Pattern)
	return m
}

func (m *Matrix) bit(x, y int) (int, byte) {
	return y*m.Stride + x>>3, 0x80 >> (x & 7)
}

// Black reports whether the module at (x, y) is dark.  Modules outside
// the grid are light.
func (m *Matrix) Black(x, y int) bool {
	if x < 0 || x >= m.Size || y < 0 || y >= m.Size {
		return false
	}
	off, b := m.bit(x, y)
	return m.Bitmap[off]&b != 0
}

// IsReserved reports whether the module at (x, y) belongs to a function
// pattern.
func (m *Matrix) IsReserved(x, y int) bool {
	if x < 0 || x >= m.Size || y < 0 || y >= m.Size {
		return false
	}
	off, b := m.bit(x, y)
	return m.Reserved[off]&b != 0
}

// Set sets the module at (x, y) to dark or light.
func (m *Matrix) Set(x, y int, dark bool) {
	off, b := m.bit(x, y)
	if dark {
		m.Bitmap[off] |= b
	} else {
		m.Bitmap[off] &^= b
	}
}

// Clone returns a copy of m sharing the reserved map.
func (m *Matrix) Clone() *Matrix {
	c := *m
	c.Bitmap = append([]byte(nil), m.Bitmap...)
	return &c
}

// Dark returns the number of dark modules.
func (m *Matrix) Dark() int {
	n := 0
	for _, b := range m.Bitmap {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
