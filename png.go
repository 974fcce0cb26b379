// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"errors"
	"image/png"
	"io"
	"sync"
)

var ErrArgs = errors.New("qr: invalid arguments")

var pngEncoder = png.Encoder{
	CompressionLevel: png.BestCompression,
	BufferPool:       &bufferPool{},
}

// bufferPool shares encoder buffers between goroutines.
type bufferPool struct{ p sync.Pool }

func (b *bufferPool) Get() *png.EncoderBuffer {
	if v, ok := b.p.Get().(*png.EncoderBuffer); ok {
		return v
	}
	return nil
}

func (b *bufferPool) Put(v *png.EncoderBuffer) { b.p.Put(v) }

// EncodePNG writes a PNG image displaying the code to w.  The output
// depends only on the code, so equal codes give identical bytes.
func (c *Code) EncodePNG(w io.Writer) error {
	if w == nil {
		return ErrArgs
	}
	return pngEncoder.Encode(w, c.Image())
}
