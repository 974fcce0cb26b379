// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	DefaultLogoEdge = 50       // logo side in pixels
	MaxLogoPixels   = 25 << 20 // largest logo accepted, in pixels
)

// Fraction of the image side a centred logo may cover at each level
// while leaving the code readable.
var safeFraction = [4]float64{
	L: 0.10,
	M: 0.15,
	Q: 0.20,
	H: 0.25,
}

// LogoOptions control the size of a logo.
type LogoOptions struct {
	Edge     int     // logo side in pixels, 0 means DefaultLogoEdge
	Fraction float64 // maximum logo side as a fraction of the image side
}

// SafeFraction returns the largest fraction of the image side a logo may
// cover at level l.
func SafeFraction(l Level) float64 {
	if l < L || l > H {
		return safeFraction[L]
	}
	return safeFraction[l]
}

// LogoFraction returns f limited to the safe fraction for level l.
// Zero or negative f means the safe fraction.
func LogoFraction(l Level, f float64) float64 {
	if sf := SafeFraction(l); f <= 0 || f > sf {
		return sf
	}
	return f
}

// LogoEdge returns the side in pixels of a logo drawn on an image side
// pixels wide: o.Edge, or DefaultLogoEdge, limited to o.Fraction of the
// side.  A zero o.Fraction means the safe fraction for level H.
func LogoEdge(side int, o LogoOptions) int {
	e := o.Edge
	if e <= 0 {
		e = DefaultLogoEdge
	}
	f := LogoFraction(H, o.Fraction)
	return max(min(e, int(f*float64(side))), 0)
}

// DecodeLogo decodes a logo image.  Oversized images are rejected before
// decoding the pixels.
func DecodeLogo(b []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 ||
		cfg.Width > MaxLogoPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d logo too large",
			ErrInvalidImage, cfg.Width, cfg.Height)
	}
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Overlay decodes logo, resizes it to a square and draws it over the
// centre of img, honouring the logo's transparency.  img is not
// modified.
func Overlay(img image.Image, logo []byte, o LogoOptions) (*image.NRGBA, error) {
	li, err := DecodeLogo(logo)
	if err != nil {
		return nil, err
	}
	return overlay(img, li, o), nil
}

func overlay(img, logo image.Image, o LogoOptions) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.Clone(img)
	e := LogoEdge(min(b.Dx(), b.Dy()), o)
	if e == 0 {
		return dst
	}
	li := imaging.Resize(logo, e, e, imaging.Lanczos)
	pt := image.Pt((b.Dx()-e)/2, (b.Dy()-e)/2)
	return imaging.Overlay(dst, li, pt, 1)
}
