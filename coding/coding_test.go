// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMaxBytes(t *testing.T) {
	for _, tt := range []struct {
		v    Version
		l    Level
		want int
	}{
		{1, L, 17}, {1, M, 14}, {1, Q, 11}, {1, H, 7},
		{9, L, 230}, {10, L, 271}, {26, L, 1367}, {26, M, 1059},
		{40, L, 2953}, {40, M, 2331}, {40, Q, 1663}, {40, H, 1273},
	} {
		if n := MaxBytes(tt.v, tt.l); n != tt.want {
			t.Errorf("MaxBytes(%v, %v) = %d, want %d",
				tt.v, tt.l, n, tt.want)
		}
	}
}

func TestEncoderReset(t *testing.T) {
	e, err := NewEncoder(2, M)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Write([]byte("discarded")); err != nil {
		t.Fatal(err)
	}
	e.Reset()
	if err := e.Write([]byte("kept")); err != nil {
		t.Fatal(err)
	}
	want, err := Encode([]byte("kept"), M, 2)
	if err != nil {
		t.Fatal(err)
	}
	if m := e.Matrix(); !bytes.Equal(m.Bitmap, want.Bitmap) {
		t.Error("matrix after Reset differs from a fresh encoding")
	}

	full := make([]byte, MaxBytes(2, M))
	e.Reset()
	if err := e.Write(full); err != nil {
		t.Fatalf("full write: %v", err)
	}
	if err := e.Write([]byte{1}); !errors.Is(err, ErrDataTooLong) {
		t.Errorf("write past capacity: %v, want ErrDataTooLong", err)
	}
	e.Reset()
	if err := e.Write(full); err != nil {
		t.Errorf("full write after Reset: %v", err)
	}
}

func TestFitVersion(t *testing.T) {
	for l := L; l <= H; l++ {
		for v := MinVersion; v <= MaxVersion; v++ {
			n := MaxBytes(v, l)
			if got, err := FitVersion(n, l); err != nil || got != v {
				t.Errorf("FitVersion(%d, %v) = %v, %v; want %v",
					n, l, got, err, v)
			}
			if v == MaxVersion {
				break
			}
			if got, _ := FitVersion(n+1, l); got != v+1 {
				t.Errorf("FitVersion(%d, %v) = %v, want %v",
					n+1, l, got, v+1)
			}
		}
	}
	if _, err := FitVersion(1, 4); err != ErrLevel {
		t.Errorf("FitVersion(1, 4) error = %v, want %v", err, ErrLevel)
	}
}

func TestCapacityBoundary(t *testing.T) {
	for l := L; l <= H; l++ {
		n := MaxBytes(MaxVersion, l)
		m, err := Encode(bytes.Repeat([]byte{'a'}, n), l, 0)
		if err != nil {
			t.Fatalf("level %v: %d bytes: %v", l, n, err)
		}
		if m.Version != MaxVersion {
			t.Errorf("level %v: version %v, want 40", l, m.Version)
		}
		_, err = Encode(bytes.Repeat([]byte{'a'}, n+1), l, 0)
		if !errors.Is(err, ErrDataTooLong) {
			t.Fatalf("level %v: %d bytes: error %v, want %v",
				l, n+1, err, ErrDataTooLong)
		}
		var ce *CapacityError
		if !errors.As(err, &ce) || ce.Len != n+1 || ce.Max != n {
			t.Errorf("level %v: error %#v", l, err)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	for _, tt := range []struct {
		data string
		l    Level
		v    Version
		err  error
	}{
		{"", H, 0, ErrInvalidInput},
		{"", L, 5, ErrInvalidInput},
		{"x", -1, 0, ErrLevel},
		{"x", 4, 0, ErrLevel},
		{"x", L, 41, ErrVersion},
		{"x", L, -2, ErrVersion},
		{"12345678", H, 1, ErrDataTooLong},
	} {
		_, err := Encode([]byte(tt.data), tt.l, tt.v)
		if !errors.Is(err, tt.err) {
			t.Errorf("Encode(%q, %v, %v) error = %v, want %v",
				tt.data, tt.l, tt.v, err, tt.err)
		}
	}
}

func TestPinnedVersion(t *testing.T) {
	m, err := Encode([]byte("https://a"), L, 12)
	if err != nil {
		t.Fatal(err)
	}
	if m.Version != 12 || m.Size != 65 {
		t.Errorf("version %v size %d, want 12 65", m.Version, m.Size)
	}
	if got := decode(t, finalize(t, m)); string(got) != "https://a" {
		t.Errorf("decoded %q", got)
	}
}

var codewordTests = []struct {
	data string
	v    Version
	l    Level
	want []byte
}{
	{"hello", 1, M, []byte{
		64, 86, 134, 86, 198, 198, 240, 236, 17, 236, 17, 236, 17,
		236, 17, 236, 22, 79, 223, 212, 140, 17, 209, 92, 47, 183,
	}},
	{"https://example.com/some/longer/path?q=1", 5, Q, []byte{
		66, 198, 118, 236, 134, 82, 87, 17, 135, 230, 34, 236, 71,
		54, 247, 17, 71, 246, 6, 236, 7, 210, 23, 17, 51, 247, 70,
		236, 162, 54, 131, 17, 242, 246, 247, 236, 246, 214, 19, 17,
		87, 82, 211, 236, 134, 246, 16, 17, 22, 198, 236, 236, 215,
		246, 17, 17, 6, 230, 236, 236, 17, 17, 63, 113, 123, 253, 76,
		14, 38, 208, 21, 60, 109, 208, 38, 184, 250, 222, 11, 28, 179,
		148, 227, 122, 14, 37, 217, 38, 147, 141, 234, 226, 115, 130,
		222, 162, 33, 227, 0, 56, 188, 48, 181, 93, 247, 182, 178,
		195, 174, 241, 125, 254, 251, 103, 244, 199, 63, 253, 254,
		177, 106, 37, 56, 69, 126, 13, 228, 10, 186, 171, 46, 105, 62,
		16,
	}},
}

func TestAddCheckBytes(t *testing.T) {
	for _, tt := range codewordTests {
		b := NewBits(tt.v)
		b.WriteSegment([]byte(tt.data), tt.v)
		if got := b.AddCheckBytes(tt.v, tt.l); !bytes.Equal(got, tt.want) {
			t.Errorf("%q %v-%v:\n got %v\nwant %v",
				tt.data, tt.v, tt.l, got, tt.want)
		}
	}
}

func TestBitsWrite(t *testing.T) {
	var b Bits
	b.Write(0b0100, 4)
	b.Write(3, 8)
	b.WriteBytes([]byte("abcde"))
	if b.Bits() != 4+8+40 {
		t.Fatalf("Bits() = %d", b.Bits())
	}
	b.PadTo(10 * 8)
	want := []byte{0x40, 0x36, 0x16, 0x26, 0x36, 0x46, 0x50, 0xec, 0x11, 0xec}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("Bytes() = %x, want %x", b.Bytes(), want)
	}
}

// finalize masks m the way SelectMask does.
func finalize(t *testing.T, m *Matrix) *Matrix {
	t.Helper()
	mask, mm := SelectMask(m)
	if mask != mm.Mask || mask < 0 || mask >= Masks {
		t.Fatalf("SelectMask returned %d, matrix mask %d", mask, mm.Mask)
	}
	return mm
}

func TestRoundTrip(t *testing.T) {
	var tests []string
	tests = append(tests,
		"https://a",
		"Привет, мир! 你好，世界 🌍",
		"line one\nline two\r\n\ttab",
	)
	bin := make([]byte, 256)
	for i := range bin {
		bin[i] = byte(i)
	}
	tests = append(tests, string(bin))
	for l := L; l <= H; l++ {
		for _, v := range []Version{1, 2, 6, 7, 9, 10, 14, 26, 27, 40} {
			n := MaxBytes(v, l)
			tests = append(tests, strings.Repeat("0123456789abcdef", n/16+1)[:n])
		}
	}
	for _, s := range tests {
		for l := L; l <= H; l++ {
			if len(s) > MaxBytes(MaxVersion, l) {
				continue
			}
			m, err := Encode([]byte(s), l, 0)
			if err != nil {
				t.Fatalf("Encode(%.20q, %v): %v", s, l, err)
			}
			mm := finalize(t, m)
			if got := decode(t, mm); string(got) != s {
				t.Errorf("%v-%v: decoded %.40q, want %.40q",
					mm.Version, l, got, s)
			}
		}
	}
}

func TestSelectMaskOptimal(t *testing.T) {
	for _, s := range []string{"https://a", "HELLO WORLD", "QR code with a logo"} {
		for l := L; l <= H; l++ {
			m, err := Encode([]byte(s), l, 0)
			if err != nil {
				t.Fatal(err)
			}
			orig := m.Clone()
			var pens [Masks]int
			want := 0
			for k := range pens {
				pens[k] = Penalty(ApplyMask(m, k))
				if pens[k] < pens[want] {
					want = k
				}
			}
			got, mm := SelectMask(m)
			if got != want {
				t.Errorf("%q %v: SelectMask = %d, want %d (penalties %v)",
					s, l, got, want, pens)
			}
			if p := Penalty(mm); p != pens[want] {
				t.Errorf("%q %v: penalty %d, want %d", s, l, p, pens[want])
			}
			if !bytes.Equal(m.Bitmap, orig.Bitmap) || m.Mask != -1 {
				t.Errorf("%q %v: SelectMask modified its input", s, l)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	data := []byte("https://example.com/determinism")
	m1, _ := Encode(data, Q, 0)
	m2, _ := Encode(data, Q, 0)
	k1, f1 := SelectMask(m1)
	k2, f2 := SelectMask(m2)
	if k1 != k2 || !bytes.Equal(f1.Bitmap, f2.Bitmap) {
		t.Error("encoding is not deterministic")
	}
}

func TestFunctionPatternsUntouched(t *testing.T) {
	for _, v := range []Version{1, 7, 21, 40} {
		p, err := NewPlan(v)
		if err != nil {
			t.Fatal(err)
		}
		n := MaxBytes(v, M)
		m, err := Encode(bytes.Repeat([]byte{0xa5}, n), M, v)
		if err != nil {
			t.Fatal(err)
		}
		for k := 0; k < Masks; k++ {
			mm := ApplyMask(m, k)
			for y := 0; y < mm.Size; y++ {
				for x := 0; x < mm.Size; x++ {
					if !p.reserved(x, y) || isFormat(x, y, mm.Size) {
						continue
					}
					off, b := mm.bit(x, y)
					if mm.Bitmap[off]&b != p.Pattern[off]&b {
						t.Fatalf("v%v mask %d: module (%d,%d) changed",
							v, k, x, y)
					}
				}
			}
		}
	}
}

func isFormat(x, y, siz int) bool {
	return x == 8 && (y <= 8 || y >= siz-8) ||
		y == 8 && (x <= 8 || x >= siz-8)
}

func TestPlan(t *testing.T) {
	p, err := NewPlan(7)
	if err != nil {
		t.Fatal(err)
	}
	m := newMatrix(7, L, p)
	siz := m.Size
	// timing
	for i := 8; i < siz-8; i++ {
		if m.Black(i, 6) != (i%2 == 0) || m.Black(6, i) != (i%2 == 0) {
			t.Fatalf("timing pattern wrong at %d", i)
		}
	}
	// position box centres and separators
	for _, c := range [][2]int{{3, 3}, {siz - 4, 3}, {3, siz - 4}} {
		if !m.Black(c[0], c[1]) || m.Black(c[0]+2, c[1]) ||
			!m.Black(c[0]+3, c[1]) {
			t.Errorf("position box at %v wrong", c)
		}
	}
	if m.Black(7, 0) || m.Black(0, 7) || m.Black(siz-8, 0) {
		t.Error("separator not light")
	}
	if !m.Black(8, siz-8) {
		t.Error("dark module missing")
	}
	// alignment box at (22, 22), none at (6, 6)
	if !m.Black(22, 22) || m.Black(21, 22) || !m.Black(20, 22) {
		t.Error("alignment box at (22,22) wrong")
	}
	// version information: 000111 110010 010100 for version 7
	var vi int
	for i := 17; i >= 0; i-- {
		vi <<= 1
		x, y := siz-11+i%3, i/3
		if m.Black(x, y) {
			vi |= 1
		}
		if m.Black(x, y) != m.Black(y, x) {
			t.Fatalf("version information copies differ at bit %d", i)
		}
	}
	if vi != 0x07c94 {
		t.Errorf("version information = %#x, want 0x07c94", vi)
	}
	// data module count: 196 codewords, no remainder bits
	data := 0
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			if !m.IsReserved(x, y) {
				data++
			}
		}
	}
	if data != 196*8 {
		t.Errorf("%d data modules, want %d", data, 196*8)
	}
}

func TestDataModules(t *testing.T) {
	// remainder bits per version: 0, 7, 0, 3, 4, 3, 0
	rem := func(v Version) int {
		switch {
		case v == 1:
			return 0
		case v <= 6:
			return 7
		case v <= 13:
			return 0
		case v <= 20:
			return 3
		case v <= 27:
			return 4
		case v <= 34:
			return 3
		}
		return 0
	}
	for v := MinVersion; v <= MaxVersion; v++ {
		p, _ := NewPlan(v)
		data := 0
		for y := 0; y < p.Size; y++ {
			for x := 0; x < p.Size; x++ {
				if !p.reserved(x, y) {
					data++
				}
			}
		}
		if want := vtab[v].bytes*8 + rem(v); data != want {
			t.Errorf("version %v: %d data modules, want %d", v, data, want)
		}
	}
}

func TestFormat(t *testing.T) {
	// L, mask 4: 110011000101111
	if f := Format(L, 4); f != 0b110011000101111 {
		t.Errorf("Format(L, 4) = %015b", f)
	}
	if f := Format(M, 0); f != 0x5412 {
		t.Errorf("Format(M, 0) = %#x, want 0x5412", f)
	}
}

func ExampleEncode() {
	m, err := Encode([]byte("https://example.com"), M, 0)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(m.Version, m.Size, m.Mask)
	_, err = Encode(make([]byte, 3000), L, 0)
	fmt.Println(err)
	// Output:
	// 2 25 -1
	// qr: cannot encode 3000 bytes into 2953-byte version 40 level L code
}

func BenchmarkEncode40(b *testing.B) {
	data := bytes.Repeat([]byte("x"), MaxBytes(40, H))
	for i := 0; i < b.N; i++ {
		m, _ := Encode(data, H, 0)
		SelectMask(m)
	}
}

// gridMatrix returns an unreserved matrix with '#' dark.
func gridMatrix(rows ...string) *Matrix {
	n := len(rows)
	m := &Matrix{Mask: 0, Size: n, Stride: (n + 7) / 8}
	m.Bitmap = make([]byte, n*m.Stride)
	m.Reserved = make([]byte, n*m.Stride)
	for y, r := range rows {
		for x := range r {
			m.Set(x, y, r[x] == '#')
		}
	}
	return m
}

func line(s string) []bool {
	l := make([]bool, len(s))
	for i := range s {
		l[i] = s[i] == '#'
	}
	return l
}

func TestPenalty(t *testing.T) {
	for _, tt := range []struct {
		rows []string
		want int
	}{
		// 10 runs of 5 (3 each), 16 boxes (3 each), 0% dark (100)
		{[]string{".....", ".....", ".....", ".....", "....."}, 178},
		{[]string{"#####", "#####", "#####", "#####", "#####"}, 178},
		// 13 of 25 dark is within 5% of balance
		{[]string{"#.#.#", ".#.#.", "#.#.#", ".#.#.", "#.#.#"}, 0},
		// 6 runs of 5, 13 boxes; 4 of 25 dark: 34% off balance, 6 steps
		{[]string{"##...", "##...", ".....", ".....", "....."},
			6*3 + 13*3 + 60},
	} {
		if got := Penalty(gridMatrix(tt.rows...)); got != tt.want {
			t.Errorf("Penalty(%q) = %d, want %d", tt.rows, got, tt.want)
		}
	}
}

func TestLinePenalty(t *testing.T) {
	for _, tt := range []struct {
		line string
		want int
	}{
		{"#.###.#", 80},           // light on both sides, outside the line
		{"#.###.#....", 80},       // light after, outside before
		{".....#.###.#....", 83},  // run of 5 and two light margins
		{"#.###.#.#", 40},         // dark within 4 after
		{"##.###.##", 0},          // no light margins
		{"########", 6},           // run of 8
		{"#####.#####", 3 + 3},    // two runs of 5
		{"......#.###.#", 4 + 80}, // run of 6
	} {
		if got := linePenalty(line(tt.line)); got != tt.want {
			t.Errorf("linePenalty(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}
