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
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot/vg"
)

// renderFixture returns a boundary and composite layers sized for
// rendering tests.
func renderFixture(t *testing.T) (*Boundary, *Grid, *Grid) {
	t.Helper()
	sr := testSR(t)
	terrain := NewGrid(8, 8, 0, 8000, 1000, 1000, sr)
	pop := NewGrid(8, 8, 0, 8000, 1000, 1000, sr)
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			terrain.Data.Set(float64(i+j)/14, j, i)
		}
	}
	// Carve out a populated region, keeping the masks disjoint.
	for _, idx := range [][2]int{{3, 3}, {3, 4}, {4, 3}} {
		pop.Data.Set(float64(idx[0]*300+idx[1]), idx[0], idx[1])
		terrain.Data.Set(math.NaN(), idx[0], idx[1])
	}
	b := &Boundary{
		Geom: geom.Polygon{{
			{X: 500, Y: 500}, {X: 7500, Y: 500}, {X: 7500, Y: 7500},
			{X: 500, Y: 7500}, {X: 500, Y: 500},
		}},
		SR: sr,
	}
	return b, terrain, pop
}

func testRenderConfig() RenderConfig {
	cfg := DefaultRenderConfig()
	cfg.DPI = 96 // keep test images small
	return cfg
}

func TestRenderImageSize(t *testing.T) {
	b, terrain, pop := renderFixture(t)
	cfg := testRenderConfig()

	var buf bytes.Buffer
	if err := Render(&buf, b, terrain, pop, cfg); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	wantW := int(cfg.Width.Points() / vg.Inch.Points() * float64(cfg.DPI))
	wantH := int(cfg.Height.Points() / vg.Inch.Points() * float64(cfg.DPI))
	size := img.Bounds().Size()
	if size.X != wantW || size.Y != wantH {
		t.Errorf("image size = %dx%d; want %dx%d", size.X, size.Y, wantW, wantH)
	}
}

func TestRenderDeterministicDimensions(t *testing.T) {
	b, terrain, pop := renderFixture(t)
	cfg := testRenderConfig()

	var first, second bytes.Buffer
	if err := Render(&first, b, terrain, pop, cfg); err != nil {
		t.Fatal(err)
	}
	if err := Render(&second, b, terrain, pop, cfg); err != nil {
		t.Fatal(err)
	}
	img1, err := png.Decode(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	img2, err := png.Decode(bytes.NewReader(second.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img1.Bounds() != img2.Bounds() {
		t.Errorf("image bounds differ between runs: %v vs %v",
			img1.Bounds(), img2.Bounds())
	}
}

func TestRenderWithoutPopulation(t *testing.T) {
	b, terrain, pop := renderFixture(t)
	// Empty the population layer; the terrain layer alone renders.
	empty := NewGrid(pop.Nx(), pop.Ny(), pop.W, pop.N, pop.Dx, pop.Dy, pop.SR)
	var buf bytes.Buffer
	if err := Render(&buf, b, terrain, empty, testRenderConfig()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("no image written")
	}
}

func TestRenderGeometryMismatch(t *testing.T) {
	b, terrain, _ := renderFixture(t)
	pop := NewGrid(4, 4, 0, 4000, 1000, 1000, terrain.SR)
	var buf bytes.Buffer
	if err := Render(&buf, b, terrain, pop, testRenderConfig()); err == nil {
		t.Error("expected geometry mismatch error")
	}
}

func TestRoundScaleLength(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.2, 1}, {2.7, 2}, {7.3, 5}, {23, 20}, {61, 50}, {140, 100},
	}
	for _, c := range cases {
		if got := roundScaleLength(c.in); different(got, c.want) {
			t.Errorf("roundScaleLength(%g) = %g; want %g", c.in, got, c.want)
		}
	}
}
