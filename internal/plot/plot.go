// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package plot renders flight analysis charts as PNG images.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	chartWidth   = 1000
	panelHeight  = 260
	panelGap     = 16
	marginLeft   = 64
	marginRight  = 24
	marginTop    = 40
	marginBottom = 36
)

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorFrame      = color.RGBA{70, 70, 70, 255}
	colorGrid       = color.RGBA{225, 225, 225, 255}
	colorText       = color.RGBA{25, 25, 25, 255}
	colorMarker     = color.RGBA{200, 30, 30, 255}
)

// Panel is one chart row: a series plotted against the shared time axis.
// NaN samples break the line instead of being drawn.
type Panel struct {
	Label   string // drawn top left inside the panel, e.g. "Altitude (m)"
	Caption string // boxed top right, may contain newlines
	Color   color.RGBA
	Y       []float64
}

// Chart is a column of panels sharing one time axis.
type Chart struct {
	Title  string
	Time   []float64 // seconds, ascending
	Panels []Panel

	// Marker places a dashed vertical line at that time on every panel.
	// Zero or out of range values draw nothing.
	Marker      float64
	MarkerLabel string
}

// Render draws the chart into a new RGBA image.
func (c *Chart) Render() (*image.RGBA, error) {
	if len(c.Panels) == 0 {
		return nil, errors.New("chart has no panels")
	}
	if len(c.Time) < 2 {
		return nil, errors.New("chart needs at least two samples")
	}
	for _, p := range c.Panels {
		if len(p.Y) != len(c.Time) {
			return nil, fmt.Errorf("panel %q has %d samples, time axis has %d", p.Label, len(p.Y), len(c.Time))
		}
	}

	height := marginTop + len(c.Panels)*panelHeight + (len(c.Panels)-1)*panelGap + marginBottom
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	if c.Title != "" {
		drawText(img, (chartWidth-textWidth(c.Title))/2, 24, colorText, c.Title)
	}

	t0 := c.Time[0]
	t1 := c.Time[len(c.Time)-1]
	if t1 <= t0 {
		t1 = t0 + 1
	}
	xTicks, xStep := niceTicks(t0, t1, 8)

	for i := range c.Panels {
		top := marginTop + i*(panelHeight+panelGap)
		c.drawPanel(img, &c.Panels[i], top, t0, t1, xTicks, tickPrec(xStep), i == len(c.Panels)-1)
	}
	return img, nil
}

func (c *Chart) drawPanel(img *image.RGBA, p *Panel, top int, t0, t1 float64, xTicks []float64, xPrec int, bottom bool) {
	plotX0 := marginLeft
	plotX1 := chartWidth - marginRight
	plotY0 := top
	plotY1 := top + panelHeight

	lo, hi := finiteRange(p.Y)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	lo -= pad
	hi += pad

	xAt := func(t float64) int {
		frac := (t - t0) / (t1 - t0)
		return plotX0 + 1 + int(frac*float64(plotX1-plotX0-2)+0.5)
	}
	yAt := func(v float64) int {
		frac := (v - lo) / (hi - lo)
		return plotY1 - 1 - int(frac*float64(panelHeight-2)+0.5)
	}

	yTicks, yStep := niceTicks(lo, hi, 5)
	for _, v := range yTicks {
		y := yAt(v)
		drawLine(img, plotX0+1, y, plotX1-1, y, colorGrid)
		label := strconv.FormatFloat(v, 'f', tickPrec(yStep), 64)
		drawText(img, plotX0-8-textWidth(label), y+4, colorText, label)
	}
	for _, t := range xTicks {
		x := xAt(t)
		drawLine(img, x, plotY0+1, x, plotY1-1, colorGrid)
		if bottom {
			label := strconv.FormatFloat(t, 'f', xPrec, 64)
			drawText(img, x-textWidth(label)/2, plotY1+16, colorText, label)
		}
	}
	if bottom {
		axis := "Time (seconds)"
		drawText(img, (plotX0+plotX1-textWidth(axis))/2, plotY1+31, colorText, axis)
	}

	drawRect(img, plotX0, plotY0, plotX1, plotY1, colorFrame)

	if c.Marker > t0 && c.Marker <= t1 {
		x := xAt(c.Marker)
		for y := plotY0 + 2; y < plotY1-2; y += 8 {
			yEnd := y + 4
			if yEnd > plotY1-2 {
				yEnd = plotY1 - 2
			}
			drawLine(img, x, y, x, yEnd, colorMarker)
		}
		if top == marginTop && c.MarkerLabel != "" {
			drawText(img, x+6, plotY0+16, colorMarker, c.MarkerLabel)
		}
	}

	prevOK := false
	var px, py int
	for i, v := range p.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			prevOK = false
			continue
		}
		x := xAt(c.Time[i])
		y := yAt(v)
		if prevOK {
			drawLine(img, px, py, x, y, p.Color)
			drawLine(img, px, py+1, x, y+1, p.Color)
		}
		px, py, prevOK = x, y, true
	}

	if p.Label != "" {
		drawText(img, plotX0+8, plotY0+16, colorText, p.Label)
	}
	if p.Caption != "" {
		lines := strings.Split(p.Caption, "\n")
		w := 0
		for _, ln := range lines {
			if lw := textWidth(ln); lw > w {
				w = lw
			}
		}
		boxW := w + 12
		boxH := 13*len(lines) + 8
		x1 := plotX1 - 8
		x0 := x1 - boxW
		y0 := plotY0 + 8
		draw.Draw(img, image.Rect(x0, y0, x1, y0+boxH), image.NewUniform(colorBackground), image.Point{}, draw.Src)
		drawRect(img, x0, y0, x1, y0+boxH, colorFrame)
		for i, ln := range lines {
			drawText(img, x0+6, y0+13*(i+1), colorText, ln)
		}
	}
}

// WritePNG encodes the image to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func drawText(img *image.RGBA, x, y int, col color.RGBA, s string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	drawLine(img, x0, y0, x1, y0, col)
	drawLine(img, x0, y1, x1, y1, col)
	drawLine(img, x0, y0, x0, y1, col)
	drawLine(img, x1, y0, x1, y1, col)
}

func finiteRange(y []float64) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}

// niceTicks picks round tick positions covering [lo, hi] using a
// 1/2/5 step ladder.
func niceTicks(lo, hi float64, target int) ([]float64, float64) {
	if target < 2 {
		target = 2
	}
	span := hi - lo
	if span <= 0 {
		return []float64{lo}, 1
	}
	step := niceStep(span / float64(target))
	var ticks []float64
	for k := math.Ceil(lo / step); k*step <= hi+step*1e-6; k++ {
		ticks = append(ticks, k*step)
	}
	return ticks, step
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch frac := raw / mag; {
	case frac <= 1:
		return mag
	case frac <= 2:
		return 2 * mag
	case frac <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func tickPrec(step float64) int {
	p := -int(math.Floor(math.Log10(step) + 1e-9))
	if p < 0 {
		return 0
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
