// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "sync"

// A Plan describes the function patterns of a QR code with a specific
// version.  Format information modules are reserved but left light;
// they depend on the level and mask and are written by the mask
// selector.
type Plan struct {
	Version Version // QR code version
	Size    int     // number of modules on a side
	Stride  int     // number of bytes per row

	Map     []byte // module map: 0 is data or checksum, 1 is other
	Pattern []byte // finder, alignment, timing, version, dark module
}

// Pre-allocated Plans.  A Plan is created the first time a version is
// used and shared afterwards; it must not be modified.
var plans [MaxVersion + 1]struct {
	once sync.Once
	p    *Plan
}

// NewPlan returns the Plan for a QR code with the given version.
func NewPlan(v Version) (*Plan, error) {
	if !v.valid() {
		return nil, ErrVersion
	}
	p := &plans[v]
	p.once.Do(func() { p.p = vplan(v) })
	return p.p, nil
}

func (p *Plan) set(x, y int, dark bool) {
	off, b := y*p.Stride+x>>3, byte(0x80)>>(x&7)
	p.Map[off] |= b
	if dark {
		p.Pattern[off] |= b
	} else {
		p.Pattern[off] &^= b
	}
}

func (p *Plan) reserved(x, y int) bool {
	return p.Map[y*p.Stride+x>>3]&(0x80>>(x&7)) != 0
}

// vplan creates a Plan for the given version.
func vplan(v Version) *Plan {
	info := &vtab[v]
	siz := v.Size()
	stride := (siz + 7) >> 3
	p := &Plan{
		Version: v,
		Size:    siz,
		Stride:  stride,
		Map:     make([]byte, stride*siz),
		Pattern: make([]byte, stride*siz),
	}

	// Timing patterns, between the separators.
	for i := 8; i < siz-8; i++ {
		p.set(i, 6, i&1 == 0)
		p.set(6, i, i&1 == 0)
	}

	// Position boxes with their separators.
	positionBox(p, 3, 3)
	positionBox(p, siz-4, 3)
	positionBox(p, 3, siz-4)

	// Alignment boxes, except where they would overlap position boxes.
	last := len(info.align) - 1
	for i, x := range info.align {
		for j, y := range info.align {
			if i == 0 && j == 0 || i == 0 && j == last ||
				i == last && j == 0 {
				continue
			}
			alignBox(p, x, y)
		}
	}

	// Format information, written later.
	for i := 0; i <= 8; i++ {
		if i != 6 {
			p.set(8, i, false)
			p.set(i, 8, false)
		}
	}
	for i := 0; i < 8; i++ {
		p.set(siz-1-i, 8, false)
		p.set(8, siz-1-i, false)
	}

	// Version information: 6x3 below the top right position box,
	// 3x6 right of the bottom left one.
	if bits := info.pattern; bits != 0 {
		for i := 0; i < 18; i++ {
			dark := bits>>i&1 != 0
			a, b := siz-11+i%3, i/3
			p.set(a, b, dark)
			p.set(b, a, dark)
		}
	}

	// One lonely dark module.
	p.set(8, siz-8, true)
	return p
}

// positionBox draws a 7x7 position (finder) box centred at x, y
// surrounded by a light separator, clipped to the grid.
func positionBox(p *Plan, x, y int) {
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			xx, yy := x+dx, y+dy
			if xx < 0 || xx >= p.Size || yy < 0 || yy >= p.Size {
				continue
			}
			d := max(abs(dx), abs(dy))
			p.set(xx, yy, d != 2 && d != 4)
		}
	}
}

// alignBox draws a 5x5 alignment (small) box centred at x, y.
func alignBox(p *Plan, x, y int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			p.set(x+dx, y+dy, max(abs(dx), abs(dy)) != 1)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Serialise writes bits from s to m in zigzag scan order: two-module
// columns from right to left, alternately upwards and downwards,
// skipping the vertical timing column and reserved modules.
func (p *Plan) Serialise(s BitStream, m *Matrix) {
	siz := p.Size
	up := true
	for right := siz - 1; right >= 1; right -= 2 {
		if right == 6 { // vertical timing strip
			right = 5
		}
		for i := 0; i < siz; i++ {
			y := i
			if up {
				y = siz - 1 - i
			}
			for x := right; x >= right-1; x-- {
				if !p.reserved(x, y) && s.Next() != 0 {
					m.Set(x, y, true)
				}
			}
		}
		up = !up
	}
}
