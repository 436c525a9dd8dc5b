// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package colormap provides the continuous palettes used to color
// highlighted subjects.
package colormap

import (
	"image/color"

	"github.com/aclements/go-gg/palette"
)

// Viridis approximates matplotlib's perceptually uniform "viridis"
// colormap from eleven evenly spaced samples.
var Viridis palette.Continuous = palette.RGBGradient{
	Colors: []color.RGBA{
		{0x44, 0x01, 0x54, 0xff},
		{0x48, 0x24, 0x75, 0xff},
		{0x41, 0x44, 0x87, 0xff},
		{0x35, 0x5f, 0x8d, 0xff},
		{0x2a, 0x78, 0x8e, 0xff},
		{0x21, 0x91, 0x8c, 0xff},
		{0x22, 0xa8, 0x84, 0xff},
		{0x44, 0xbf, 0x70, 0xff},
		{0x7a, 0xd1, 0x51, 0xff},
		{0xbd, 0xdf, 0x26, 0xff},
		{0xfd, 0xe7, 0x25, 0xff},
	},
}

// Sample returns n colors evenly spaced over [0, 1] of p. A single
// color is taken from the low end of p.
func Sample(p palette.Continuous, n int) []color.Color {
	if n <= 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := range out {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		out[i] = p.Map(x)
	}
	return out
}
