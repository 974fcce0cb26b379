// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Number of mask patterns.
const Masks = 8

// Mask patterns, x is the column and y the row:
//
//	0: ▄▀▄▀▄▀▄▀▄▀▄▀  1: ▄▄▄▄▄▄▄▄▄▄▄▄  2:  ██ ██ ██ ██  3: ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//
//	4:    ███   ███  5:  ▄▄▄▄▄ ▄▄▄▄▄  6:    ▄▄▄   ▄▄▄  7: ▄█▄▀ ▀▄█▄▀ ▀
//	   ███   ███         █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	      ███   ███      ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
var maskFunc = [Masks]func(x, y int) bool{
	func(x, y int) bool { return (x+y)%2 == 0 },
	func(x, y int) bool { return y%2 == 0 },
	func(x, y int) bool { return x%3 == 0 },
	func(x, y int) bool { return (x+y)%3 == 0 },
	func(x, y int) bool { return (y/2+x/3)%2 == 0 },
	func(x, y int) bool { return x*y%2+x*y%3 == 0 },
	func(x, y int) bool { return (x*y%2+x*y%3)%2 == 0 },
	func(x, y int) bool { return ((x+y)%2+x*y%3)%2 == 0 },
}

// ApplyMask returns a copy of the unmasked matrix m with the mask
// pattern applied to data modules and the format information written.
func ApplyMask(m *Matrix, mask int) *Matrix {
	if m.Mask >= 0 {
		panic("qr: matrix already masked")
	}
	if mask < 0 || mask >= Masks {
		panic("qr: invalid mask")
	}
	c := m.Clone()
	f := maskFunc[mask]
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			if f(x, y) && !c.IsReserved(x, y) {
				c.Set(x, y, !c.Black(x, y))
			}
		}
	}
	c.Mask = mask
	writeFormat(c, ftab[c.Level][mask])
	return c
}

// writeFormat writes the 15 format bits to both copies.  Bit 0 is the
// least significant.
func writeFormat(m *Matrix, fb uint16) {
	siz := m.Size
	bit := func(i int) bool { return fb>>i&1 != 0 }
	// around the top left position box
	for i := 0; i < 6; i++ {
		m.Set(8, i, bit(i))
	}
	m.Set(8, 7, bit(6))
	m.Set(8, 8, bit(7))
	m.Set(7, 8, bit(8))
	for i := 9; i < 15; i++ {
		m.Set(14-i, 8, bit(i))
	}
	// below the top right and right of the bottom left position boxes
	for i := 0; i < 8; i++ {
		m.Set(siz-1-i, 8, bit(i))
	}
	for i := 8; i < 15; i++ {
		m.Set(8, siz-15+i, bit(i))
	}
}

// Format returns the format bits for a level and mask.
func Format(l Level, mask int) uint16 { return ftab[l][mask] }

// SelectMask applies each mask pattern to the unmasked matrix m and
// returns the one with the lowest penalty, with the masked matrix.
// Ties go to the lower mask number.  m is not modified.
func SelectMask(m *Matrix) (int, *Matrix) {
	best, pen := -1, 0
	var bm *Matrix
	for mask := 0; mask < Masks; mask++ {
		c := ApplyMask(m, mask)
		if p := Penalty(c); best < 0 || p < pen {
			best, pen, bm = mask, p, c
		}
	}
	return best, bm
}
