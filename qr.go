// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qr encodes and styles QR codes.

Data is encoded in a single byte mode segment at the requested error
correction level.  The resulting symbol is drawn with a module shape and
colours, optionally with a logo in the centre and a caption below, and
returned as an image or PNG.

	png, err := qr.Generate("https://example.com", qr.DefaultOptions())

The low-level details live in package coding.
*/
package qr // import "github.com/unixdj/dynqr"

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/unixdj/dynqr/coding"
)

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level = coding.Level

const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

var (
	ErrInvalidInput = coding.ErrInvalidInput
	ErrDataTooLong  = coding.ErrDataTooLong
	ErrInvalidImage = errors.New("qr: invalid image")
	ErrStyle        = errors.New("qr: invalid style")
	ErrColor        = errors.New("qr: invalid colour")
)

// Options control encoding and rendering.  The zero value encodes at
// level L with square modules, no quiet zone and the default scale and
// colours; DefaultOptions returns the usual settings.
type Options struct {
	Level       Level          // error correction level
	Version     coding.Version // 0 selects the smallest version that fits
	Style                      // module shape, size and colours
	LogoOptions                // logo size limits
	Logo        []byte         // logo image in any format imaging decodes
	Caption     string         // text drawn in a band below the code
	Latin1      bool           // convert UTF-8 data to ISO 8859-1
}

// DefaultOptions returns level H, rounded modules, scale 10, a quiet
// zone of 4 modules, black on white and a 50 pixel logo.
func DefaultOptions() Options {
	return Options{
		Level: H,
		Style: Style{
			Scale:      DefaultScale,
			Border:     DefaultBorder,
			Shape:      Rounded,
			Foreground: Black,
			Background: White,
		},
		LogoOptions: LogoOptions{Edge: DefaultLogoEdge},
	}
}

// A Code is an encoded QR symbol together with the way it is drawn.
type Code struct {
	*coding.Matrix // masked symbol
	Style          // rendering style
	Logo           LogoOptions
	Caption        string
	Reverse        bool // swap colours

	logo image.Image
}

// Encode encodes data as a QR code and prepares it for drawing.  Logo
// bytes are decoded here, so a Code with a logo cannot fail to render.
func Encode(data string, o Options) (*Code, error) {
	if data == "" {
		return nil, ErrInvalidInput
	}
	if o.Latin1 {
		s, err := charmap.ISO8859_1.NewEncoder().String(data)
		if err != nil {
			return nil, fmt.Errorf("%w: not representable in Latin-1",
				ErrInvalidInput)
		}
		data = s
	}
	if err := o.Style.Validate(); err != nil {
		return nil, err
	}
	m, err := coding.Encode([]byte(data), o.Level, o.Version)
	if err != nil {
		return nil, err
	}
	_, m = coding.SelectMask(m)
	c := &Code{
		Matrix:  m,
		Style:   o.Style.withDefaults(),
		Caption: strings.TrimSpace(o.Caption),
	}
	if c.pixels() > MaxImageSide {
		return nil, fmt.Errorf("%w: image wider than %d pixels",
			ErrStyle, MaxImageSide)
	}
	if len(o.Logo) != 0 {
		if c.logo, err = DecodeLogo(o.Logo); err != nil {
			return nil, err
		}
		c.Logo = o.LogoOptions
		c.Logo.Fraction = LogoFraction(o.Level, o.LogoOptions.Fraction)
	}
	return c, nil
}

// Generate encodes data and returns a PNG image of the styled code.
func Generate(data string, o Options) ([]byte, error) {
	c, err := Encode(data, o)
	if err != nil {
		return nil, err
	}
	return c.PNG()
}

// pixels returns the side of the code image without the caption.
func (c *Code) pixels() int {
	return (c.Size + 2*c.Border) * c.Scale
}

// Image returns an image displaying the code with its logo and caption.
func (c *Code) Image() image.Image {
	s := c.Style
	if c.Reverse {
		s.Foreground, s.Background = s.Background, s.Foreground
	}
	var img image.Image = Render(c.Matrix, s)
	if c.logo != nil {
		img = overlay(img, c.logo, c.Logo)
	}
	if c.Caption != "" {
		img = AddCaption(img, c.Caption, s.Foreground, s.Background)
	}
	return img
}

// ParseLevel parses a level name, "L", "M", "Q" or "H" in either case.
func ParseLevel(s string) (Level, error) {
	return coding.ParseLevel(s)
}

// ParseColor parses a colour given as 3 or 6 hex digits, with or
// without a leading '#'.  The result is opaque.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	var v [6]byte
	switch len(h) {
	case 3:
		for i := 0; i < 3; i++ {
			v[2*i], v[2*i+1] = h[i], h[i]
		}
	case 6:
		copy(v[:], h)
	default:
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrColor, s)
	}
	var b [3]byte
	for i := range v {
		d := unhex(v[i])
		if d < 0 {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrColor, s)
		}
		b[i/2] = b[i/2]<<4 | byte(d)
	}
	return color.RGBA{b[0], b[1], b[2], 0xff}, nil
}

func unhex(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	}
	return -1
}

// FormatColor formats an opaque colour as "#rrggbb".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// PNG returns a PNG image displaying the code.
func (c *Code) PNG() ([]byte, error) {
	var b bytes.Buffer
	if err := c.EncodePNG(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
