// Copyright 2010 The Go Authors.  All rights reserved.
// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gf256 implements arithmetic over the Galois Field GF(256)
// used by QR codes, and Reed-Solomon check byte generation.
//
// Only the QR field, GF(2⁸) modulo x⁸+x⁴+x³+x²+1 with generator 2,
// is supported.  Its exponent and logarithm tables are fixed and
// generated by gen.go.
package gf256 // import "github.com/unixdj/dynqr/gf256"

import (
	"errors"
	"sync"
)

// ErrField is returned by NewField for unsupported polynomials.
var ErrField = errors.New("gf256: unsupported field")

// QR field parameters.
const (
	Poly      = 0x11d // x⁸+x⁴+x³+x²+1
	Generator = 2
)

// A Field represents an instance of GF(256) defined by a specific
// polynomial.
type Field struct {
	log *[256]byte // log[0] is unused
	exp *[256]byte // exp[255] == exp[0]
}

var qrField = &Field{log: &logTable, exp: &expTable}

// NewField returns the field for the given polynomial and generator.
func NewField(poly, α int) (*Field, error) {
	if poly != Poly || α != Generator {
		return nil, ErrField
	}
	return qrField, nil
}

// QR returns the QR code field.
func QR() *Field { return qrField }

// Add returns the sum of x and y in the field.
func (f *Field) Add(x, y byte) byte {
	return x ^ y
}

// Exp returns the base-α exponential of e in the field.
// If e < 0, Exp returns 0.
func (f *Field) Exp(e int) byte {
	if e < 0 {
		return 0
	}
	return f.exp[e%255]
}

// Log returns the base-α logarithm of x in the field.
// If x == 0, Log returns -1.
func (f *Field) Log(x byte) int {
	if x == 0 {
		return -1
	}
	return int(f.log[x])
}

// Inv returns the multiplicative inverse of x in the field.
// If x == 0, Inv returns 0.
func (f *Field) Inv(x byte) byte {
	if x == 0 {
		return 0
	}
	return f.exp[255-int(f.log[x])]
}

// Mul returns the product of x and y in the field.
func (f *Field) Mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[(int(f.log[x])+int(f.log[y]))%255]
}

// An RSEncoder implements Reed-Solomon encoding
// over a given field using a given number of error correction bytes.
// An RSEncoder is safe for concurrent use.
type RSEncoder struct {
	f   *Field
	c   int
	gen []byte // generator polynomial, highest degree first
}

// Generator polynomials are shared between encoders.
var gens [256]struct {
	once sync.Once
	p    []byte
}

func (f *Field) gen(c int) []byte {
	g := &gens[c]
	g.once.Do(func() {
		// ∏ (x - αⁱ) for i < c; subtraction is addition.
		p := make([]byte, 1, c+1)
		p[0] = 1
		for i := 0; i < c; i++ {
			a := f.Exp(i)
			p = append(p, f.Mul(a, p[len(p)-1]))
			for j := len(p) - 2; j > 0; j-- {
				p[j] ^= f.Mul(a, p[j-1])
			}
		}
		g.p = p
	})
	return g.p
}

// NewRSEncoder returns a new Reed-Solomon encoder
// over the given field and number of error correction bytes.
func NewRSEncoder(f *Field, c int) *RSEncoder {
	if c < 0 || c > 255 {
		panic("gf256: invalid check byte count")
	}
	return &RSEncoder{f: f, c: c, gen: f.gen(c)}
}

// Gen returns a copy of the generator polynomial, highest degree first.
func (rs *RSEncoder) Gen() []byte {
	return append([]byte(nil), rs.gen...)
}

// ECC writes to check the error correcting code bytes
// for data using the given Reed-Solomon parameters.
func (rs *RSEncoder) ECC(data []byte, check []byte) {
	if len(check) < rs.c {
		panic("gf256: invalid check byte length")
	}
	rem := check[:rs.c]
	clear(rem)
	if rs.c == 0 {
		return
	}
	// Remainder of data·xᶜ divided by the generator,
	// computed one data byte at a time.
	f, gen := rs.f, rs.gen[1:]
	for _, b := range data {
		k := b ^ rem[0]
		copy(rem, rem[1:])
		rem[len(rem)-1] = 0
		if k == 0 {
			continue
		}
		for i, g := range gen {
			rem[i] ^= f.Mul(k, g)
		}
	}
}
