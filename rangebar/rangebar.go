// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rangebar draws distance readings as a 1D bar on the terminal
// using ANSI color codes.
//
// The bar fills proportionally to the distance, from red when the target is
// close to green when it is far. It also implements display.Drawer so any
// 1 pixel high image can be drawn on it.
package rangebar

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for the bar.
type Opts struct {
	// Width is the number of cells.
	Width int
	// Max is the distance of a full bar.
	Max physic.Distance
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// W defaults to a colorable stdout.
	W io.Writer

	_ struct{}
}

var empty = color.NRGBA{0x20, 0x20, 0x20, 0xFF}

// Dev is a range bar printed on a terminal.
type Dev struct {
	w       io.Writer
	max     physic.Distance
	palette ansi256.Palette

	pixels []color.NRGBA
	label  string
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.Width <= 0 {
		return nil, fmt.Errorf("rangebar: invalid width %d", opts.Width)
	}
	if opts.Max <= 0 {
		return nil, fmt.Errorf("rangebar: invalid max distance %s", opts.Max)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		max:     opts.Max,
		palette: *p,
		pixels:  make([]color.NRGBA, opts.Width),
	}, nil
}

func (d *Dev) String() string {
	return "RangeBar"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors and moves to the next line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show draws the bar for distance r.
func (d *Dev) Show(r physic.Distance) error {
	n := len(d.pixels)
	filled := int(int64(r) * int64(n) / int64(d.max))
	if filled > n {
		filled = n
	}
	if filled < 0 {
		filled = 0
	}
	for i := range d.pixels {
		if i < filled {
			d.pixels[i] = gradient(i, n)
		} else {
			d.pixels[i] = empty
		}
	}
	d.label = r.String()
	if r > d.max {
		d.label = ">" + d.max.String()
	}
	return d.refresh()
}

// ShowError draws an empty bar labeled with err.
func (d *Dev) ShowError(err error) error {
	for i := range d.pixels {
		d.pixels[i] = empty
	}
	d.label = err.Error()
	return d.refresh()
}

// gradient returns the color of cell i out of n, red to green.
func gradient(i, n int) color.NRGBA {
	if n <= 1 {
		return color.NRGBA{0xFF, 0, 0, 0xFF}
	}
	g := byte(i * 0xFF / (n - 1))
	return color.NRGBA{0xFF - g, g, 0, 0xFF}
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: len(d.pixels), Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX := r.Min.X - srcR.Min.X
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		d.pixels[sX+deltaX] = color.NRGBAModel.Convert(src.At(sX, srcR.Min.Y)).(color.NRGBA)
	}
	d.label = ""
	return d.refresh()
}

func (d *Dev) refresh() error {
	// Reuse the buffer, Show is called at the measurement rate.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for _, c := range d.pixels {
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(d.label)
	// Erase the rest of a longer previous label.
	_, _ = d.buf.WriteString("\033[K")
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
