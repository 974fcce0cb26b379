// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Encoder encodes byte mode QR codes of one version and level.
// An Encoder may be reused after Reset but is not safe for concurrent
// use.
type Encoder struct {
	p *Plan
	l Level
	b *Bits
}

// NewEncoder returns an Encoder for the given version and level.
func NewEncoder(v Version, l Level) (*Encoder, error) {
	if l < L || l > H {
		return nil, ErrLevel
	}
	p, err := NewPlan(v)
	if err != nil {
		return nil, err
	}
	return &Encoder{p: p, l: l, b: NewBits(v)}, nil
}

// Reset discards the data written to e.
func (e *Encoder) Reset() { e.b.Reset() }

// Write adds a byte mode segment holding data to e.
func (e *Encoder) Write(data []byte) error {
	v := e.p.Version
	if e.b.Bits()+v.ByteLength(len(data)) > v.DataBits(e.l) ||
		len(data) > MaxBytes(v, e.l) {
		return &CapacityError{Len: len(data), Max: MaxBytes(v, e.l),
			Version: v, Level: e.l}
	}
	e.b.WriteSegment(data, v)
	return nil
}

// Matrix returns the unmasked QR matrix holding data written to e.
// Format information modules are left light.
func (e *Encoder) Matrix() *Matrix {
	v := e.p.Version
	bits := NewBitStream(e.b.AddCheckBytes(v, e.l))
	m := newMatrix(v, e.l, e.p)
	e.p.Serialise(bits, m)
	return m
}

// Encode returns the unmasked QR matrix encoding data in byte mode at
// level l.  If v is 0, the smallest version holding data is chosen;
// otherwise data must fit into version v.
func Encode(data []byte, l Level, v Version) (*Matrix, error) {
	if len(data) == 0 {
		return nil, ErrInvalidInput
	}
	if l < L || l > H {
		return nil, ErrLevel
	}
	if v == 0 {
		var err error
		if v, err = FitVersion(len(data), l); err != nil {
			return nil, err
		}
	}
	e, err := NewEncoder(v, l)
	if err != nil {
		return nil, err
	}
	if err := e.Write(data); err != nil {
		return nil, err
	}
	return e.Matrix(), nil
}
