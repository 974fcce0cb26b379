// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import "strings"

// Half block characters indexed by upper | lower<<1, 1 meaning dark.
var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// String returns the code drawn with Unicode half blocks, two module
// rows per line, with the quiet zone.  Scale and colours are ignored.
func (c *Code) String() string {
	if c.Matrix == nil {
		return ""
	}
	bord := c.Border
	pix := c.Size + 2*bord
	var b strings.Builder
	b.Grow((pix + 1) / 2 * (pix*3 + 1))
	for y := -bord; y < c.Size+bord; y += 2 {
		for x := -bord; x < c.Size+bord; x++ {
			i := 0
			if c.dark(x, y) {
				i |= 1
			}
			if y+1 < c.Size+bord && c.dark(x, y+1) {
				i |= 2
			}
			b.WriteString(halfBlocks[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ASCII returns the code drawn with two '#' characters per dark module
// and two spaces per light module, with the quiet zone.
func (c *Code) ASCII() string {
	if c.Matrix == nil {
		return ""
	}
	bord := c.Border
	pix := c.Size + 2*bord
	b := make([]byte, (pix*2+1)*pix)
	i := 0
	for y := -bord; y < c.Size+bord; y++ {
		for x := -bord; x < c.Size+bord; x++ {
			var p byte = ' '
			if c.dark(x, y) {
				p = '#'
			}
			b[i], b[i+1] = p, p
			i += 2
		}
		b[i] = '\n'
		i++
	}
	return string(b)
}

// dark reports whether (x, y) is drawn dark, honouring c.Reverse.
// Modules outside the symbol are light.
func (c *Code) dark(x, y int) bool {
	return c.Black(x, y) != c.Reverse
}
