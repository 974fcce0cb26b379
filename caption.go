// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Caption font sizes in pixels.
const (
	minCaptionSize = 12
	maxCaptionSize = 48
)

var captionFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// captionFace returns a face of the given size in pixels.
func captionFace(size float64) (font.Face, error) {
	f, err := captionFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// AddCaption returns img extended by a band of colour bg holding text
// centred in colour fg.  The font shrinks to fit the width; text that
// does not fit at the smallest size is clipped.
func AddCaption(img image.Image, text string, fg, bg color.RGBA) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	size := min(max(float64(w)/16, minCaptionSize), maxCaptionSize)
	band := int(size * 2)

	dst := image.NewRGBA(image.Rect(0, 0, w, h+band))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, 0, w, h), img, b.Min, draw.Src)
	dc := gg.NewContextForRGBA(dst)

	var face font.Face
	for ; ; size-- {
		f, err := captionFace(size)
		if err != nil {
			// leave the band empty
			return dst
		}
		if face != nil {
			face.Close()
		}
		face = f
		dc.SetFontFace(face)
		if tw, _ := dc.MeasureString(text); tw <= float64(w)*0.9 ||
			size <= minCaptionSize {
			break
		}
	}
	defer face.Close()
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, float64(w)/2, float64(h)+float64(band)/2,
		0.5, 0.5)
	return dst
}
