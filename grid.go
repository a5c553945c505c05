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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// Grid is a dense two-dimensional raster with georeferencing
// information. Row 0 is the northernmost row. Cells without a valid
// value hold NaN; NaN is carried through every transform and only
// dropped when a grid is tabulated for rendering.
type Grid struct {
	Data *sparse.DenseArray // shape [ny][nx]

	// W and N are the coordinates of the upper-left grid corner
	// in the coordinate reference system SR.
	W, N float64

	// Dx and Dy are the cell dimensions; both are positive.
	Dx, Dy float64

	SR *proj.SR
}

// NewGrid creates a grid with the given shape and georeferencing where
// every cell is initialized to NaN.
func NewGrid(nx, ny int, w, n, dx, dy float64, sr *proj.SR) *Grid {
	g := &Grid{
		Data: sparse.ZerosDense(ny, nx),
		W:    w,
		N:    n,
		Dx:   dx,
		Dy:   dy,
		SR:   sr,
	}
	for i := range g.Data.Elements {
		g.Data.Elements[i] = math.NaN()
	}
	return g
}

// Nx returns the number of grid columns.
func (g *Grid) Nx() int { return g.Data.Shape[1] }

// Ny returns the number of grid rows.
func (g *Grid) Ny() int { return g.Data.Shape[0] }

// X returns the center coordinate of column i.
func (g *Grid) X(i int) float64 { return g.W + (float64(i)+0.5)*g.Dx }

// Y returns the center coordinate of row j.
func (g *Grid) Y(j int) float64 { return g.N - (float64(j)+0.5)*g.Dy }

// Bounds returns the outer edges of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.W, Y: g.N - float64(g.Ny())*g.Dy},
		Max: geom.Point{X: g.W + float64(g.Nx())*g.Dx, Y: g.N},
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{
		Data: g.Data.Copy(),
		W:    g.W,
		N:    g.N,
		Dx:   g.Dx,
		Dy:   g.Dy,
		SR:   g.SR,
	}
}

// geomTolerance is the relative tolerance used when comparing grid
// georeferencing.
const geomTolerance = 1.e-9

// sameGeometry reports whether g and o share cell geometry (shape,
// origin, and cell size).
func (g *Grid) sameGeometry(o *Grid) bool {
	if g.Nx() != o.Nx() || g.Ny() != o.Ny() {
		return false
	}
	closeTo := func(a, b float64) bool {
		return math.Abs(a-b) <= geomTolerance*math.Max(math.Abs(a), math.Abs(b))+geomTolerance
	}
	return closeTo(g.W, o.W) && closeTo(g.N, o.N) &&
		closeTo(g.Dx, o.Dx) && closeTo(g.Dy, o.Dy)
}

// PixelRecord is one valued grid cell in tabular form, the hand-off
// format between the raster layers and the renderer.
type PixelRecord struct {
	X, Y  float64 // cell center
	Value float64
}

// Table converts the grid to one record per cell, dropping NaN cells.
// This is the only place where no-data cells are discarded rather than
// carried forward.
func (g *Grid) Table() []PixelRecord {
	o := make([]PixelRecord, 0, g.Nx()*g.Ny())
	for j := 0; j < g.Ny(); j++ {
		for i := 0; i < g.Nx(); i++ {
			v := g.Data.Get(j, i)
			if math.IsNaN(v) {
				continue
			}
			o = append(o, PixelRecord{X: g.X(i), Y: g.Y(j), Value: v})
		}
	}
	return o
}

// Sample returns the bilinearly interpolated grid value at point
// (x, y), given in the grid's coordinate reference system. If any cell
// contributing to the interpolation is NaN or lies outside the grid,
// the result is NaN: interpolation never converts missing data to
// zero. Sampling exactly at a cell center returns that cell's value.
func (g *Grid) Sample(x, y float64) float64 {
	fx := (x-g.W)/g.Dx - 0.5
	fy := (g.N-y)/g.Dy - 0.5
	i0 := int(math.Floor(fx))
	j0 := int(math.Floor(fy))
	wx := fx - float64(i0)
	wy := fy - float64(j0)

	neighbors := [4]struct {
		i, j int
		w    float64
	}{
		{i0, j0, (1 - wx) * (1 - wy)},
		{i0 + 1, j0, wx * (1 - wy)},
		{i0, j0 + 1, (1 - wx) * wy},
		{i0 + 1, j0 + 1, wx * wy},
	}
	var v float64
	for _, n := range neighbors {
		if n.w < 1.e-12 {
			continue
		}
		if n.i < 0 || n.i >= g.Nx() || n.j < 0 || n.j >= g.Ny() {
			return math.NaN()
		}
		z := g.Data.Get(n.j, n.i)
		if math.IsNaN(z) {
			return math.NaN()
		}
		v += n.w * z
	}
	return v
}

// Crop returns a new grid covering the intersection of g with bounds b,
// expanded outward to whole cells. The cell geometry is preserved.
func (g *Grid) Crop(b *geom.Bounds) *Grid {
	i0 := int(math.Floor((b.Min.X - g.W) / g.Dx))
	i1 := int(math.Ceil((b.Max.X - g.W) / g.Dx))
	j0 := int(math.Floor((g.N - b.Max.Y) / g.Dy))
	j1 := int(math.Ceil((g.N - b.Min.Y) / g.Dy))
	if i0 < 0 {
		i0 = 0
	}
	if j0 < 0 {
		j0 = 0
	}
	if i1 > g.Nx() {
		i1 = g.Nx()
	}
	if j1 > g.Ny() {
		j1 = g.Ny()
	}
	o := NewGrid(i1-i0, j1-j0, g.W+float64(i0)*g.Dx, g.N-float64(j0)*g.Dy,
		g.Dx, g.Dy, g.SR)
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			o.Data.Set(g.Data.Get(j, i), j-j0, i-i0)
		}
	}
	return o
}

// MaskPolygon returns a copy of g where every cell whose center lies
// outside p is set to NaN. p must be in the grid's coordinate
// reference system.
func (g *Grid) MaskPolygon(p geom.Polygonal) *Grid {
	o := g.Clone()
	for j := 0; j < g.Ny(); j++ {
		for i := 0; i < g.Nx(); i++ {
			pt := geom.Point{X: g.X(i), Y: g.Y(j)}
			if pt.Within(p) == geom.Outside {
				o.Data.Set(math.NaN(), j, i)
			}
		}
	}
	return o
}
