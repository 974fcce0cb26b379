// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"testing"
)

// readFormat reads one copy of the format bits.
func readFormat(m *Matrix, second bool) uint16 {
	var fb uint16
	get := func(x, y, i int) {
		if m.Black(x, y) {
			fb |= 1 << i
		}
	}
	siz := m.Size
	if second {
		for i := 0; i < 8; i++ {
			get(siz-1-i, 8, i)
		}
		for i := 8; i < 15; i++ {
			get(8, siz-15+i, i)
		}
		return fb
	}
	for i := 0; i < 6; i++ {
		get(8, i, i)
	}
	get(8, 7, 6)
	get(8, 8, 7)
	get(7, 8, 8)
	for i := 9; i < 15; i++ {
		get(14-i, 8, i)
	}
	return fb
}

// decode reads a masked matrix back: it checks the format information,
// removes the mask, collects the codewords, checks every block's
// syndromes and returns the byte mode payload.
func decode(t *testing.T, m *Matrix) []byte {
	t.Helper()
	fb := readFormat(m, false)
	if fb2 := readFormat(m, true); fb != fb2 {
		t.Fatalf("format copies differ: %015b %015b", fb, fb2)
	}
	lv, mask := Level(-1), -1
	for l := range ftab {
		for k, f := range ftab[l] {
			if f == fb {
				lv, mask = Level(l), k
			}
		}
	}
	if mask < 0 {
		t.Fatalf("bad format bits %015b", fb)
	}
	if lv != m.Level || mask != m.Mask {
		t.Fatalf("format says %v/%d, matrix %v/%d", lv, mask, m.Level, m.Mask)
	}
	if (m.Size-17)%4 != 0 {
		t.Fatalf("bad size %d", m.Size)
	}
	v := Version((m.Size - 17) / 4)
	p, err := NewPlan(v)
	if err != nil {
		t.Fatal(err)
	}

	// Read codewords in placement order.
	f := maskFunc[mask]
	vt := &vtab[v]
	cw := make([]byte, vt.bytes)
	n := 0
	up := true
	for right := m.Size - 1; right >= 1; right -= 2 {
		if right == 6 {
			right = 5
		}
		for i := 0; i < m.Size; i++ {
			y := i
			if up {
				y = m.Size - 1 - i
			}
			for x := right; x >= right-1; x-- {
				if p.reserved(x, y) {
					continue
				}
				if n < len(cw)*8 && m.Black(x, y) != f(x, y) {
					cw[n>>3] |= 0x80 >> (n & 7)
				}
				n++
			}
		}
		up = !up
	}
	if n < len(cw)*8 {
		t.Fatalf("only %d data modules for %d codewords", n, len(cw))
	}

	// De-interleave and check.
	lev := vt.level[lv]
	nd := v.dataBytes(lv)
	db := nd / lev.nblock
	normal := lev.nblock - nd%lev.nblock
	blocks := make([][]byte, lev.nblock)
	k := 0
	for i := 0; i <= db; i++ {
		for j := range blocks {
			if i < db || j >= normal {
				blocks[j] = append(blocks[j], cw[k])
				k++
			}
		}
	}
	var data []byte
	for _, b := range blocks {
		data = append(data, b...)
	}
	for i := 0; i < lev.check; i++ {
		for j := range blocks {
			blocks[j] = append(blocks[j], cw[k])
			k++
		}
	}
	for j, b := range blocks {
		for i := 0; i < lev.check; i++ {
			// b(α^i) must vanish
			a := Field.Exp(i)
			var s byte
			for _, c := range b {
				s = Field.Mul(s, a) ^ c
			}
			if s != 0 {
				t.Fatalf("v%v-%v block %d: syndrome %d = %d", v, lv, j, i, s)
			}
		}
	}

	// Parse the segment.
	s := NewBitStream(data)
	read := func(nbit int) int {
		x := 0
		for ; nbit > 0; nbit-- {
			x = x<<1 | int(s.Next())
		}
		return x
	}
	if mode := read(4); mode != byteIndicator {
		t.Fatalf("mode indicator %d", mode)
	}
	cnt := read(byteCountLength[v.SizeClass()])
	if 4+byteCountLength[v.SizeClass()]+cnt*8 > len(data)*8 {
		t.Fatalf("count %d exceeds capacity", cnt)
	}
	out := make([]byte, cnt)
	for i := range out {
		out[i] = byte(read(8))
	}
	return out
}
