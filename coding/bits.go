// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "github.com/unixdj/dynqr/gf256"

// Bits is a bit stream writer.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version.
func NewBits(v Version) *Bits {
	return &Bits{b: make([]byte, 0, vtab[v].bytes)}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits written.
func (b *Bits) Bits() int {
	return b.nbit
}

// Bytes returns the written bytes.  It panics on a partial byte.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	return b.b
}

// Write writes the low nbit bits of v, most significant first.
// nbit may not exceed 32.
func (b *Bits) Write(v uint32, nbit int) {
	if nbit == 0 {
		return
	}
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// WriteBytes writes s, eight bits per byte.
func (b *Bits) WriteBytes(s []byte) {
	if b.nbit&7 == 0 {
		b.b = append(b.b, s...)
		b.nbit += len(s) * 8
		return
	}
	for ; len(s) >= 4; s = s[4:] {
		v := uint32(s[0])<<24 | uint32(s[1])<<16 |
			uint32(s[2])<<8 | uint32(s[3])
		b.Write(v, 32)
	}
	for _, c := range s {
		b.Write(uint32(c), 8)
	}
}

// WriteSegment writes a byte mode segment for a QR code of version v.
func (b *Bits) WriteSegment(s []byte, v Version) {
	b.Write(byteIndicator, 4)
	b.Write(uint32(len(s)), byteCountLength[v.SizeClass()])
	b.WriteBytes(s)
}

// PadTo adds up to 4 terminator bits to b, zero bits up to the byte
// boundary and alternating pad bytes up to n bits.
func (b *Bits) PadTo(n int) {
	if b.nbit > n {
		panic("qr: too much data")
	}
	b.Write(0, min(4, n-b.nbit))
	b.Write(0, -b.nbit&7)
	for pad := uint32(0xec); b.nbit < n; pad ^= 0xec ^ 0x11 {
		b.Write(pad, 8)
	}
}

// AddCheckBytes pads b to the data capacity of the given version and
// level, and returns the data and checksum codewords interleaved in
// transmission order.
func (b *Bits) AddCheckBytes(v Version, l Level) []byte {
	b.PadTo(v.DataBits(l))
	vt := &vtab[v]
	lev := vt.level[l]

	// Split the data into blocks, short blocks first; long blocks
	// carry one more data byte.
	dat := b.Bytes()
	nd := len(dat)
	db := nd / lev.nblock
	normal := lev.nblock - nd%lev.nblock
	blocks := make([][]byte, lev.nblock)
	check := make([][]byte, lev.nblock)
	chk := make([]byte, lev.nblock*lev.check)
	rs := gf256.NewRSEncoder(Field, lev.check)
	for i := range blocks {
		n := db
		if i >= normal {
			n++
		}
		blocks[i], dat = dat[:n], dat[n:]
		check[i], chk = chk[:lev.check], chk[lev.check:]
		rs.ECC(blocks[i], check[i])
	}

	out := make([]byte, 0, vt.bytes)
	out = interleave(out, blocks, db+1)
	out = interleave(out, check, lev.check)
	if len(out) != vt.bytes {
		panic("qr: internal error")
	}
	return out
}

// interleave appends to dst the i-th byte of every block in turn,
// for i < n, skipping blocks shorter than i+1.
func interleave(dst []byte, blocks [][]byte, n int) []byte {
	for i := 0; i < n; i++ {
		for _, blk := range blocks {
			if i < len(blk) {
				dst = append(dst, blk[i])
			}
		}
	}
	return dst
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}
