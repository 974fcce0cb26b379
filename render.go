// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fogleman/gg"

	"github.com/unixdj/dynqr/coding"
)

// Style limits and defaults.
const (
	DefaultScale  = 10   // image pixels per module
	DefaultBorder = 4    // quiet zone modules
	MaxScale      = 256  // maximum Scale
	MaxBorder     = 64   // maximum Border
	MaxImageSide  = 8192 // maximum image side in pixels, caption excluded

	// Rounded corners need at least this many pixels per module.
	MinRoundedScale = 4
)

var (
	Black = color.RGBA{0x00, 0x00, 0x00, 0xff}
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// A Style describes how a QR matrix is drawn.  A zero Scale means
// DefaultScale; zero colours mean black on white.  Non-zero colours must
// be opaque.
type Style struct {
	Scale      int        // image pixels per module
	Border     int        // quiet zone width in modules
	Shape      Shape      // dark module shape
	Foreground color.RGBA // dark module colour
	Background color.RGBA // light module and quiet zone colour
}

// Validate reports whether s can be drawn.
func (s Style) Validate() error {
	switch {
	case s.Scale < 0 || s.Scale > MaxScale:
		return fmt.Errorf("%w: scale %d not in 1..%d",
			ErrStyle, s.Scale, MaxScale)
	case s.Border < 0 || s.Border > MaxBorder:
		return fmt.Errorf("%w: border %d not in 0..%d",
			ErrStyle, s.Border, MaxBorder)
	case getShape(s.Shape) == nil:
		return fmt.Errorf("%w: unknown shape %d", ErrStyle, int(s.Shape))
	case !opaque(s.Foreground) || !opaque(s.Background):
		return fmt.Errorf("%w: colours must be opaque", ErrColor)
	}
	return nil
}

func opaque(c color.RGBA) bool { return c.A == 0xff || c == color.RGBA{} }

func (s Style) withDefaults() Style {
	if s.Scale == 0 {
		s.Scale = DefaultScale
	}
	if s.Foreground == (color.RGBA{}) {
		s.Foreground = Black
	}
	if s.Background == (color.RGBA{}) {
		s.Background = White
	}
	return s
}

// A ShapeDrawer draws the dark modules of m onto dst in colour fg.
// Module (x, y) covers the square of side scale with its top left
// corner at o + (x*scale, y*scale).  dst is already filled with the
// background.  A ShapeDrawer must leave the pixel at the centre of each
// dark module exactly fg and must not draw outside the dark modules.
type ShapeDrawer func(dst *image.RGBA, m *coding.Matrix, o image.Point, scale int, fg color.RGBA)

// A Shape selects a registered ShapeDrawer.
type Shape int

// Built-in shapes.
const (
	Square  Shape = iota // full square modules
	Rounded              // squares with exposed corners rounded
)

type shapeEntry struct {
	name string
	draw ShapeDrawer
}

var (
	shapep    atomic.Pointer[[]shapeEntry] // shapes
	shapeLock sync.Mutex                   // write lock
)

func init() {
	shapep.Store(&[]shapeEntry{
		Square:  {"square", drawSquares},
		Rounded: {"rounded", drawRounded},
	})
}

func getShape(s Shape) *shapeEntry {
	if shapes := *shapep.Load(); s >= 0 && int(s) < len(shapes) {
		return &shapes[s]
	}
	return nil
}

func (s Shape) String() string {
	if e := getShape(s); e != nil {
		return e.name
	}
	return fmt.Sprint(int(s))
}

// RegisterShape registers a module shape under name, returning its
// number, or -1 if d is nil or the name is empty or taken.
func RegisterShape(name string, d ShapeDrawer) Shape {
	name = strings.ToLower(name)
	if name == "" || d == nil {
		return -1
	}
	shapeLock.Lock()
	defer shapeLock.Unlock()
	shapes := *shapep.Load()
	for _, e := range shapes {
		if e.name == name {
			return -1
		}
	}
	s := Shape(len(shapes))
	shapes = append(shapes[:len(shapes):len(shapes)], shapeEntry{name, d})
	shapep.Store(&shapes)
	return s
}

// ParseShape returns the shape registered under name, in any case.
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(name)
	for i, e := range *shapep.Load() {
		if e.name == name {
			return Shape(i), nil
		}
	}
	return -1, fmt.Errorf("%w: unknown shape %q", ErrStyle, name)
}

// Render draws m.  The image is (m.Size + 2*s.Border) * s.Scale pixels
// on a side; the quiet zone and light modules are s.Background.  s
// should be valid; an unknown shape is drawn as Square.  m is not
// modified.
func Render(m *coding.Matrix, s Style) *image.RGBA {
	s = s.withDefaults()
	scale, bord := max(s.Scale, 1), max(s.Border, 0)
	pix := (m.Size + 2*bord) * scale
	dst := image.NewRGBA(image.Rect(0, 0, pix, pix))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.Background),
		image.Point{}, draw.Src)
	d := drawSquares
	if e := getShape(s.Shape); e != nil {
		d = e.draw
	}
	d(dst, m, image.Pt(bord*scale, bord*scale), scale, s.Foreground)
	return dst
}

// drawSquares draws horizontal runs of dark modules as rectangles.
func drawSquares(dst *image.RGBA, m *coding.Matrix, o image.Point, scale int, fg color.RGBA) {
	src := image.NewUniform(fg)
	siz := m.Size
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; {
			for x < siz && !m.Black(x, y) {
				x++
			}
			if x == siz {
				break
			}
			b := x
			for x < siz && m.Black(x, y) {
				x++
			}
			r := image.Rect(b*scale, y*scale, x*scale, (y+1)*scale)
			draw.Draw(dst, r.Add(o), src, image.Point{}, draw.Src)
		}
	}
}

// drawRounded draws each dark module as a square whose corners are
// rounded with radius scale/2 where both modules sharing the corner's
// edges are light.  Sides touching dark modules stay straight, so
// neighbours merge.  All modules form a single path filled at once.
func drawRounded(dst *image.RGBA, m *coding.Matrix, o image.Point, scale int, fg color.RGBA) {
	if scale < MinRoundedScale {
		drawSquares(dst, m, o, scale, fg)
		return
	}
	dc := gg.NewContextForRGBA(dst)
	s := float64(scale)
	r := s / 2
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if !m.Black(x, y) {
				continue
			}
			up, down := m.Black(x, y-1), m.Black(x, y+1)
			left, right := m.Black(x-1, y), m.Black(x+1, y)
			x0 := float64(o.X + x*scale)
			y0 := float64(o.Y + y*scale)
			x1, y1 := x0+s, y0+s
			dc.NewSubPath()
			// clockwise from the top left corner
			if !up && !left {
				dc.MoveTo(x0+r, y0)
			} else {
				dc.MoveTo(x0, y0)
			}
			if !up && !right {
				dc.LineTo(x1-r, y0)
				dc.DrawArc(x1-r, y0+r, r, -math.Pi/2, 0)
			} else {
				dc.LineTo(x1, y0)
			}
			if !down && !right {
				dc.LineTo(x1, y1-r)
				dc.DrawArc(x1-r, y1-r, r, 0, math.Pi/2)
			} else {
				dc.LineTo(x1, y1)
			}
			if !down && !left {
				dc.LineTo(x0+r, y1)
				dc.DrawArc(x0+r, y1-r, r, math.Pi/2, math.Pi)
			} else {
				dc.LineTo(x0, y1)
			}
			if !up && !left {
				dc.LineTo(x0, y0+r)
				dc.DrawArc(x0+r, y0+r, r, math.Pi, 3*math.Pi/2)
			}
			dc.ClosePath()
		}
	}
	dc.SetColor(fg)
	dc.Fill()
}
