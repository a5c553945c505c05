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

// Package reliefmap renders population density composited over shaded
// terrain relief for a single country. It fetches an administrative
// boundary, a population raster, and elevation tiles from remote
// services, derives a hillshade, aligns the population grid with it,
// and draws a two-layer static map.
//
// The pipeline is strictly ordered and single-pass: every stage fully
// materializes its output before the next stage starts, every
// transform returns a new grid, and any failure aborts the run.
package reliefmap

import (
	"context"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
)

// Version is the ReliefMap release version.
const Version = "0.1.0"

// Pipeline holds the intermediate products of one map rendering run.
// StageFuncs fill it in sequence; each stage reads the fields of the
// stages before it and writes its own.
type Pipeline struct {
	Boundary   *Boundary
	Elevation  *Grid // clipped to the boundary, native tile resolution
	Population *Grid // native population-raster resolution

	Hillshade *Grid // derived from Elevation

	// TerrainLayer and PopulationLayer are the mutually exclusive
	// coverage masks handed to the renderer. Both share the
	// Hillshade grid's cell geometry.
	TerrainLayer    *Grid
	PopulationLayer *Grid

	Stages []StageFunc

	// Msg, if non-nil, receives progress messages.
	Msg chan string
}

// A StageFunc performs one stage of the rendering pipeline.
type StageFunc func(*Pipeline) error

// Run executes the pipeline stages in order, stopping at the first
// error.
func (p *Pipeline) Run() error {
	for _, stage := range p.Stages {
		if err := stage(p); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) log(msg string) {
	if p.Msg != nil {
		p.Msg <- msg
	}
}

// FetchData returns a stage that downloads the boundary polygon, the
// population raster, and the elevation grid. The two raster fetches
// are independent but run sequentially; nothing downstream needs them
// before the compositing stage.
func FetchData(ctx context.Context, bf *BoundaryFetcher, pf *PopulationFetcher,
	ef *ElevationFetcher, country string, level int) StageFunc {
	return func(p *Pipeline) error {
		p.log("Fetching administrative boundary")
		b, err := bf.Fetch(ctx, country, level)
		if err != nil {
			return err
		}
		p.Boundary = b

		p.log("Fetching population raster")
		pop, err := pf.Fetch(ctx, country)
		if err != nil {
			return err
		}
		p.Population = pop

		p.log("Fetching elevation tiles")
		elev, err := ef.Fetch(ctx, b)
		if err != nil {
			return err
		}
		p.Elevation = elev
		return nil
	}
}

// DeriveHillshade returns a stage that exaggerates the elevation grid
// and derives slope, aspect, and hillshade from it.
func DeriveHillshade(exaggeration, azimuthDeg, altitudeDeg float64) StageFunc {
	return func(p *Pipeline) error {
		p.log("Deriving hillshade")
		elev := Exaggerate(p.Elevation, exaggeration)
		hs, err := Hillshade(Slope(elev), Aspect(elev), azimuthDeg, altitudeDeg)
		if err != nil {
			return err
		}
		p.Hillshade = hs
		return nil
	}
}

// Composite returns a stage that resamples the population grid onto
// the hillshade geometry and builds the two mutually exclusive
// coverage masks.
func Composite(populationCutoff float64) StageFunc {
	return func(p *Pipeline) error {
		p.log("Compositing population over terrain")
		pop, err := Resample(p.Population, p.Hillshade)
		if err != nil {
			return err
		}
		terrain, err := TerrainOnly(p.Hillshade, pop)
		if err != nil {
			return err
		}
		p.TerrainLayer = terrain
		p.PopulationLayer = PopulationOnly(pop, populationCutoff)
		if vals := tableValues(p.PopulationLayer.Table()); len(vals) > 0 {
			p.log(fmt.Sprintf("Population layer: %d cells, %.0f people, max %.0f per cell",
				len(vals), floats.Sum(vals), floats.Max(vals)))
		}
		return nil
	}
}

// WriteMap returns a stage that renders the composite layers to w as
// a PNG.
func WriteMap(w io.Writer, cfg RenderConfig) StageFunc {
	return func(p *Pipeline) error {
		p.log("Rendering map")
		return Render(w, p.Boundary, p.TerrainLayer, p.PopulationLayer, cfg)
	}
}
