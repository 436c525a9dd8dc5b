// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// thumbFactor is how much the index page preview is scaled down.
const thumbFactor = 2

// writeThumbnail writes src scaled down by factor as a PNG.
func writeThumbnail(w io.Writer, src image.Image, factor int) error {
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx()/factor, sb.Dy()/factor))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return png.Encode(w, dst)
}
