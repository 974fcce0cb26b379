// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bufio"
	"encoding/binary"
	"io"
	"strconv"
)

// EncodePBM writes a Portable Bit Map image displaying the code to w,
// for use with netpbm.  Only the matrix, scale, border and c.Reverse
// are used: modules are square and the logo and caption are left out.
func (c *Code) EncodePBM(w io.Writer) error {
	if w == nil || c.Matrix == nil {
		return ErrArgs
	}
	b := bufio.NewWriter(w)
	siz := c.Size
	scale := max(c.Scale, 1)
	bord := c.Border
	length := scale * (siz + bord*2)
	ls := strconv.Itoa(length)
	if _, err := b.WriteString("P4\n" + ls + " " + ls + "\n"); err != nil {
		return err
	}
	row := make([]byte, (length+7)/8)
	var white byte
	if c.Reverse {
		white = 0xff
		for i := range row {
			row[i] = white
		}
		// padding bits past the last pixel stay clear
		if n := length & 7; n != 0 {
			row[len(row)-1] = white << (8 - n)
		}
	}
	blank := append([]byte(nil), row...)
	for i := 0; i < scale*bord; i++ {
		if _, err := b.Write(blank); err != nil {
			return err
		}
	}
	data := row[scale*bord/8 : (scale*(siz+bord)+7)/8]
	slen := scale * bord & 7
	for y := 0; y < siz; y++ {
		srow := c.Bitmap[y*c.Stride : (y+1)*c.Stride]
		if scale == 8 {
			pbmRow8(data, srow, white)
		} else {
			pbmRow(data, srow, siz, scale, white, slen)
		}
		for i := 0; i < scale; i++ {
			if _, err := b.Write(row); err != nil {
				return err
			}
		}
	}
	for i := 0; i < scale*bord; i++ {
		if _, err := b.Write(blank); err != nil {
			return err
		}
	}
	return b.Flush()
}

// pbmRow8 encodes a row of modules at scale 8, one byte per module.
func pbmRow8(row, srow []byte, white byte) {
	var b uint64
	for _, v := range srow {
		v ^= white
		for i := 0; i < 8; i++ {
			b = b<<8 | uint64(-(v & 1))
			v >>= 1
		}
		if len(row) < 8 {
			break
		}
		binary.LittleEndian.PutUint64(row, b)
		row = row[8:]
	}
	for i := range row {
		row[i] = byte(b)
		b >>= 8
	}
}

// pbmRow encodes a row of modules, scale pixels each, starting slen
// bits into the first byte of row.  Bits of the first byte before slen
// keep their value.
func pbmRow(row, srow []byte, siz, scale int, white byte, slen int) {
	pos := slen
	for x := 0; x < siz; x++ {
		dark := srow[x>>3]&(0x80>>(x&7)) != 0
		if white != 0 {
			dark = !dark
		}
		for i := 0; i < scale; i++ {
			b := byte(0x80) >> (pos & 7)
			if dark {
				row[pos>>3] |= b
			} else {
				row[pos>>3] &^= b
			}
			pos++
		}
	}
}
