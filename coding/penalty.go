// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Total penalty is the sum of penalties for runs and boxes
// of same-colour modules, finder patterns and colour balance.
//
//   - RunP: for non-overlapping runs of n modules, n>=5 -> n-2
//   - BoxP: for possibly overlapping 2x2 boxes -> 3
//   - FindP: for possibly overlapping finder patterns -> 40
//     The pattern is 1011101 with 0000 on either side; it may
//     extend into the quiet zone
//   - BalP: for n% of dark modules -> 10*floor(abs(n-50)/5)
//
// Runs and finder patterns are counted in rows and columns.
const (
	MinRun    = 5  // RunP:  minimum run length
	RunPDelta = -2 // RunP:  add to run length
	BoxPP     = 3  // BoxP:  points per box
	FindPP    = 40 // FindP: points per pattern
	BalPP     = 10 // BalP:  points per 5% step
)

// Penalty returns the penalty value for a masked QR matrix.
// The value is used for choosing the mask.
func Penalty(m *Matrix) int {
	siz := m.Size
	p := 0
	row := make([]bool, siz)
	col := make([]bool, siz)
	var prev []bool
	for y := 0; y < siz; y++ {
		for x := range row {
			row[x] = m.Black(x, y)
			col[x] = m.Black(y, x)
		}
		p += linePenalty(row) + linePenalty(col)
		// BoxP, detected at the bottom right module
		if prev != nil {
			for x := 1; x < siz; x++ {
				c := row[x]
				if row[x-1] == c && prev[x-1] == c && prev[x] == c {
					p += BoxPP
				}
			}
		} else {
			prev = make([]bool, siz)
		}
		copy(prev, row)
	}

	// BalP: deviation from 50% in whole 5% steps
	total := siz * siz
	dev := m.Dark()*20 - total*10
	if dev < 0 {
		dev = -dev
	}
	return p + dev/total*BalPP
}

// linePenalty returns RunP and FindP for a row or column.
func linePenalty(line []bool) int {
	p := 0
	run := 1
	for i := 1; i <= len(line); i++ {
		if i < len(line) && line[i] == line[i-1] {
			run++
			continue
		}
		if run >= MinRun {
			p += run + RunPDelta
		}
		run = 1
	}
	for i := 0; i+7 <= len(line); i++ {
		if !finderLike(line[i : i+7]) {
			continue
		}
		if light(line, i-4, i) {
			p += FindPP
		}
		if light(line, i+7, i+11) {
			p += FindPP
		}
	}
	return p
}

// finderLike reports whether s is dark-light-dark×3-light-dark.
func finderLike(s []bool) bool {
	return s[0] && !s[1] && s[2] && s[3] && s[4] && !s[5] && s[6]
}

// light reports whether line[from:to] is light, treating modules
// outside the line as light.
func light(line []bool, from, to int) bool {
	for i := max(from, 0); i < min(to, len(line)); i++ {
		if line[i] {
			return false
		}
	}
	return true
}
