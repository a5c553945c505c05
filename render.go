/*
Copyright © 2024 the ReliefMap authors.
This file is part of ReliefMap.

ReliefMap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ReliefMap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ReliefMap.  If not, see <http://www.gnu.org/licenses/>.
*/

package reliefmap

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/ctessum/geom/carto"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// RenderConfig holds the fixed presentation parameters of the output
// map.
type RenderConfig struct {
	Title    string
	Subtitle string
	Caption  string

	Width, Height vg.Length
	DPI           int

	LegendLabel string
}

// DefaultRenderConfig returns the presentation parameters used by the
// reliefmap command.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Title:       "Switzerland",
		Subtitle:    "Population density over terrain relief",
		Caption:     "Data: GADM, WorldPop 2020, Mapzen Terrain Tiles",
		Width:       8 * vg.Inch,
		Height:      5 * vg.Inch,
		DPI:         600,
		LegendLabel: "Population [people per cell, log10]",
	}
}

// grayColors is the light-to-dark ramp for the terrain layer. High
// hillshade intensity maps to light gray, shadow to dark gray.
var grayColors = carto.Colorlist{
	Val: []float64{-1, 0, 1},
	R:   []float64{70, 70, 238},
	G:   []float64{70, 70, 238},
	B:   []float64{70, 70, 238},
	HighLimit: color.NRGBA{245, 245, 245, 255},
	LowLimit:  color.NRGBA{50, 50, 50, 255},
}

// popColors is a yellow-orange-red ramp for the population layer,
// starting part-way into the palette so even the smallest mapped
// values stand out against the grayscale terrain.
var popColors = carto.Colorlist{
	Val: []float64{-1, 0, 0.25, 0.5, 0.75, 1},
	R:   []float64{254, 254, 254, 253, 227, 128},
	G:   []float64{217, 217, 178, 141, 26, 0},
	B:   []float64{118, 118, 76, 60, 28, 38},
	HighLimit: color.NRGBA{90, 0, 30, 255},
	LowLimit:  color.NRGBA{255, 255, 204, 255},
}

// Render composites the terrain-only and population masks into a
// two-layer map with the boundary outline, a north arrow, a scale bar,
// titles, and a population legend, and encodes it as a single PNG.
// Both grids must share cell geometry; the boundary is reprojected to
// that geometry's coordinate reference system as needed.
func Render(w io.Writer, b *Boundary, terrain, population *Grid, cfg RenderConfig) error {
	if !terrain.sameGeometry(population) {
		return fmt.Errorf("reliefmap: terrain and population grid geometries differ")
	}
	bp, err := b.Reproject(terrain.SR)
	if err != nil {
		return err
	}

	terrainTable := terrain.Table()
	popTable := population.Table()
	if len(terrainTable) == 0 && len(popTable) == 0 {
		return fmt.Errorf("reliefmap: nothing to render: both layers are empty")
	}

	terrainMap := carto.NewColorMap(carto.Linear)
	terrainMap.ColorScheme = grayColors
	terrainMap.AddArray(tableValues(terrainTable))
	terrainMap.Set()

	// Population is colored on a logarithmic scale: the colormap sees
	// log10 values, so its integer legend ticks fall on 1, 10, 100,
	// and 1000 people per cell.
	logPop := make([]float64, len(popTable))
	for i, r := range popTable {
		logPop[i] = math.Log10(r.Value)
	}
	popMap := carto.NewColorMap(carto.Linear)
	popMap.ColorScheme = popColors
	popMap.NumDivisions = 4
	popMap.AddArray(logPop)
	popMap.Set()

	img := image.NewRGBA(image.Rect(0, 0, terrain.Nx(), terrain.Ny()))
	for _, r := range terrainTable {
		i, j := terrain.cellIndex(r.X, r.Y)
		img.Set(i, j, terrainMap.GetColor(r.Value))
	}
	for k, r := range popTable {
		i, j := population.cellIndex(r.X, r.Y)
		img.Set(i, j, popMap.GetColor(logPop[k]))
	}

	c := vgimg.NewWith(
		vgimg.UseWH(cfg.Width, cfg.Height),
		vgimg.UseDPI(cfg.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(c)

	const (
		margin  = 0.15 * vg.Inch
		titleH  = 0.6 * vg.Inch
		legendH = 0.55 * vg.Inch
	)
	mapc := draw.Crop(dc, margin, -margin, legendH, -titleH)

	bounds := terrain.Bounds()
	m := carto.NewCanvas(bounds.Max.Y, bounds.Min.Y, bounds.Max.X, bounds.Min.X, mapc)
	rect := vg.Rectangle{
		Min: m.Coordinates(bounds.Min),
		Max: m.Coordinates(bounds.Max),
	}
	m.DrawImage(rect, img)

	outline := draw.LineStyle{
		Color: color.NRGBA{0, 0, 0, 255},
		Width: vg.Points(0.7),
	}
	if err := m.DrawVector(bp.Geom, color.NRGBA{}, outline, draw.GlyphStyle{}); err != nil {
		return fmt.Errorf("reliefmap: drawing boundary outline: %v", err)
	}

	if err := drawNorthArrow(mapc, rect); err != nil {
		return err
	}
	if err := drawScaleBar(mapc, rect, terrain); err != nil {
		return err
	}
	if err := drawTitles(dc, cfg); err != nil {
		return err
	}

	if len(popTable) > 0 {
		legendc := draw.Crop(dc, 1.2*vg.Inch, -1.2*vg.Inch, 0.05*vg.Inch, legendH-dc.Max.Y+dc.Min.Y)
		popMap.LegendWidth = legendc.Max.X - legendc.Min.X
		popMap.LegendHeight = legendc.Max.Y - legendc.Min.Y
		popMap.FontSize = 7
		if err := popMap.Legend(&legendc, cfg.LegendLabel); err != nil {
			return fmt.Errorf("reliefmap: drawing legend: %v", err)
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("reliefmap: encoding map image: %v", err)
	}
	return nil
}

// cellIndex returns the column and row containing point (x, y).
func (g *Grid) cellIndex(x, y float64) (i, j int) {
	i = int(math.Floor((x - g.W) / g.Dx))
	j = int(math.Floor((g.N - y) / g.Dy))
	return i, j
}

func tableValues(t []PixelRecord) []float64 {
	o := make([]float64, len(t))
	for i, r := range t {
		o[i] = r.Value
	}
	return o
}

// drawNorthArrow draws a small north arrow in the top-left corner of
// the map area.
func drawNorthArrow(c draw.Canvas, rect vg.Rectangle) error {
	const (
		inset = 0.25 * vg.Inch
		h     = 0.28 * vg.Inch
		w     = 0.12 * vg.Inch
	)
	x := rect.Min.X + inset
	top := rect.Max.Y - inset

	var p vg.Path
	p.Move(vg.Point{X: x, Y: top})
	p.Line(vg.Point{X: x - w/2, Y: top - h})
	p.Line(vg.Point{X: x, Y: top - 0.7*h})
	p.Line(vg.Point{X: x + w/2, Y: top - h})
	p.Close()
	c.SetColor(color.NRGBA{0, 0, 0, 255})
	c.Fill(p)

	font, err := vg.MakeFont("Helvetica", vg.Points(9))
	if err != nil {
		return fmt.Errorf("reliefmap: loading annotation font: %v", err)
	}
	sty := draw.TextStyle{
		Color:  color.NRGBA{0, 0, 0, 255},
		Font:   font,
		XAlign: draw.XCenter,
		YAlign: draw.YTop,
	}
	c.FillText(sty, vg.Point{X: x, Y: top - h - 0.03*vg.Inch}, "N")
	return nil
}

// drawScaleBar draws a scale bar in the bottom-right corner of the map
// area, sized to a round number of kilometers.
func drawScaleBar(c draw.Canvas, rect vg.Rectangle, g *Grid) error {
	// Ground distance represented by the map width. Web Mercator
	// exaggerates distances by 1/cos(latitude); correct with the
	// latitude of the grid center.
	const earthRadius = 6378137.0
	yc := g.N - float64(g.Ny())*g.Dy/2
	lat := 2*math.Atan(math.Exp(yc/earthRadius)) - math.Pi/2
	mapMeters := float64(g.Nx()) * g.Dx * math.Cos(lat)

	barKm := roundScaleLength(mapMeters / 5 / 1000)
	barFrac := barKm * 1000 / mapMeters
	barLen := (rect.Max.X - rect.Min.X) * vg.Length(barFrac)

	const inset = 0.25 * vg.Inch
	x1 := rect.Max.X - inset
	x0 := x1 - barLen
	y := rect.Min.Y + inset

	black := color.NRGBA{0, 0, 0, 255}
	c.SetColor(black)
	c.SetLineWidth(vg.Points(1))
	var p vg.Path
	tick := 0.04 * vg.Inch
	p.Move(vg.Point{X: x0, Y: y + tick})
	p.Line(vg.Point{X: x0, Y: y})
	p.Line(vg.Point{X: x1, Y: y})
	p.Line(vg.Point{X: x1, Y: y + tick})
	c.Stroke(p)

	font, err := vg.MakeFont("Helvetica", vg.Points(7))
	if err != nil {
		return fmt.Errorf("reliefmap: loading annotation font: %v", err)
	}
	sty := draw.TextStyle{
		Color:  black,
		Font:   font,
		XAlign: draw.XCenter,
		YAlign: draw.YBottom,
	}
	c.FillText(sty, vg.Point{X: (x0 + x1) / 2, Y: y + tick + 0.02*vg.Inch},
		fmt.Sprintf("%g km", barKm))
	return nil
}

// roundScaleLength rounds km down to the nearest 1, 2, or 5 times a
// power of ten.
func roundScaleLength(km float64) float64 {
	if km <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(km)))
	switch {
	case km >= 5*mag:
		return 5 * mag
	case km >= 2*mag:
		return 2 * mag
	default:
		return mag
	}
}

// drawTitles draws the title, subtitle, and caption bands.
func drawTitles(c draw.Canvas, cfg RenderConfig) error {
	titleFont, err := vg.MakeFont("Helvetica-Bold", vg.Points(14))
	if err != nil {
		return fmt.Errorf("reliefmap: loading title font: %v", err)
	}
	subFont, err := vg.MakeFont("Helvetica", vg.Points(9))
	if err != nil {
		return err
	}
	capFont, err := vg.MakeFont("Helvetica", vg.Points(6))
	if err != nil {
		return err
	}
	black := color.NRGBA{0, 0, 0, 255}
	gray := color.NRGBA{90, 90, 90, 255}
	cx := (c.Min.X + c.Max.X) / 2

	c.FillText(draw.TextStyle{Color: black, Font: titleFont,
		XAlign: draw.XCenter, YAlign: draw.YTop},
		vg.Point{X: cx, Y: c.Max.Y - 0.08*vg.Inch}, cfg.Title)
	c.FillText(draw.TextStyle{Color: gray, Font: subFont,
		XAlign: draw.XCenter, YAlign: draw.YTop},
		vg.Point{X: cx, Y: c.Max.Y - 0.34*vg.Inch}, cfg.Subtitle)
	c.FillText(draw.TextStyle{Color: gray, Font: capFont,
		XAlign: draw.XRight, YAlign: draw.YBottom},
		vg.Point{X: c.Max.X - 0.05*vg.Inch, Y: c.Min.Y + 0.04*vg.Inch}, cfg.Caption)
	return nil
}
