// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	plotWidth  = 640
	plotHeight = 320
	plotMargin = 40.0
)

// series is one line on the plot. NaN values are gaps, such as a reading
// that returned an error.
type series struct {
	name    string
	unit    string
	values  []float64
	r, g, b float64
}

// renderPlot draws every series scaled to its own maximum.
func renderPlot(title string, all ...series) (*gg.Context, error) {
	n := 0
	for _, s := range all {
		if len(s.values) > n {
			n = len(s.values)
		}
	}
	if n == 0 {
		return nil, errors.New("plot: no readings")
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 12}))

	w := float64(plotWidth) - 2*plotMargin
	h := float64(plotHeight) - 2*plotMargin
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(plotMargin, plotMargin, w, h)
	dc.Stroke()
	dc.DrawStringAnchored(title, float64(plotWidth)/2, plotMargin/2, 0.5, 0.5)

	step := w
	if n > 1 {
		step = w / float64(n-1)
	}
	for i, s := range all {
		peak := 0.
		for _, v := range s.values {
			if !math.IsNaN(v) && v > peak {
				peak = v
			}
		}
		if peak == 0 {
			peak = 1
		}
		dc.SetRGB(s.r, s.g, s.b)
		dc.SetLineWidth(2)
		pen := false
		for j, v := range s.values {
			if math.IsNaN(v) {
				pen = false
				continue
			}
			x := plotMargin + float64(j)*step
			y := plotMargin + h - v/peak*h
			if pen {
				dc.LineTo(x, y)
			} else {
				dc.MoveTo(x, y)
				pen = true
			}
		}
		dc.Stroke()
		label := fmt.Sprintf("%s (max %.1f%s)", s.name, peak, s.unit)
		dc.DrawStringAnchored(label, plotMargin+float64(i)*w/2, float64(plotHeight)-plotMargin/2, 0, 0.5)
	}
	return dc, nil
}

// writePlot renders the series to a PNG file.
func writePlot(path, title string, all ...series) error {
	dc, err := renderPlot(title, all...)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}
