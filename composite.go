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
	"math"

	"github.com/ctessum/geom/proj"
)

// DefaultPopulationCutoff is the population count below which a cell
// is treated as unpopulated after resampling, so that interpolation
// noise does not visually compete with the terrain layer.
const DefaultPopulationCutoff = 0.1

// Resample interpolates src onto the cell geometry of target using
// bilinear interpolation, reprojecting cell centers between the two
// coordinate reference systems when they differ. Interpolation
// involving NaN yields NaN, never zero. Resampling a grid onto its own
// geometry returns its values unchanged.
func Resample(src, target *Grid) (*Grid, error) {
	var ct proj.Transformer
	if !target.SR.Equal(src.SR, 10) {
		var err error
		ct, err = target.SR.NewTransform(src.SR)
		if err != nil {
			return nil, fmt.Errorf("reliefmap: creating resampling transform: %v", err)
		}
	}
	o := NewGrid(target.Nx(), target.Ny(), target.W, target.N,
		target.Dx, target.Dy, target.SR)
	for j := 0; j < target.Ny(); j++ {
		for i := 0; i < target.Nx(); i++ {
			x, y := target.X(i), target.Y(j)
			if ct != nil {
				var err error
				x, y, err = ct(x, y)
				if err != nil {
					return nil, fmt.Errorf("reliefmap: resampling cell (%d,%d): %v", j, i, err)
				}
			}
			o.Data.Set(src.Sample(x, y), j, i)
		}
	}
	return o, nil
}

// TerrainOnly builds the terrain-side coverage mask: the hillshade
// value wherever the resampled population is NaN, and NaN elsewhere.
// It is disjoint from the population mask by construction. Both inputs
// must share cell geometry.
func TerrainOnly(hillshade, pop *Grid) (*Grid, error) {
	if !hillshade.sameGeometry(pop) {
		return nil, fmt.Errorf("reliefmap: hillshade and population grid geometries differ")
	}
	o := hillshade.Clone()
	for k, v := range pop.Data.Elements {
		if !math.IsNaN(v) {
			o.Data.Elements[k] = math.NaN()
		}
	}
	return o, nil
}

// PopulationOnly builds the population-side coverage mask: a copy of
// the resampled population with every value at or below cutoff forced
// to NaN.
func PopulationOnly(pop *Grid, cutoff float64) *Grid {
	o := pop.Clone()
	for k, v := range o.Data.Elements {
		if v <= cutoff {
			o.Data.Elements[k] = math.NaN()
		}
	}
	return o
}
