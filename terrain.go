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
)

// Default terrain rendering parameters.
const (
	DefaultExaggeration  = 1.3   // vertical exaggeration factor
	DefaultLightAzimuth  = 225.0 // degrees clockwise from north
	DefaultLightAltitude = 40.0  // degrees above the horizon
)

// Exaggerate returns a copy of the elevation grid scaled by the given
// vertical exaggeration factor. The scaling is cosmetic: it steepens
// derived slopes without changing geographic registration.
func Exaggerate(g *Grid, factor float64) *Grid {
	o := g.Clone()
	o.Data.Scale(factor)
	return o
}

// gradient computes the central-difference elevation gradient at cell
// (j, i). ok is false for edge cells and cells with a NaN neighbor.
func gradient(g *Grid, j, i int) (dzdx, dzdy float64, ok bool) {
	if i == 0 || j == 0 || i == g.Nx()-1 || j == g.Ny()-1 {
		return 0, 0, false
	}
	w := g.Data.Get(j, i-1)
	e := g.Data.Get(j, i+1)
	n := g.Data.Get(j-1, i)
	s := g.Data.Get(j+1, i)
	if math.IsNaN(w) || math.IsNaN(e) || math.IsNaN(n) || math.IsNaN(s) {
		return 0, 0, false
	}
	dzdx = (e - w) / (2 * g.Dx)
	dzdy = (n - s) / (2 * g.Dy) // row 0 is north, so north is j-1
	return dzdx, dzdy, true
}

// Slope returns the per-cell terrain steepness in radians from
// horizontal, derived from the central-difference gradient of the
// elevation grid. Edge cells and cells adjacent to NaN become NaN.
func Slope(g *Grid) *Grid {
	o := NewGrid(g.Nx(), g.Ny(), g.W, g.N, g.Dx, g.Dy, g.SR)
	for j := 0; j < g.Ny(); j++ {
		for i := 0; i < g.Nx(); i++ {
			dzdx, dzdy, ok := gradient(g, j, i)
			if !ok {
				continue // stays NaN
			}
			o.Data.Set(math.Atan(math.Hypot(dzdx, dzdy)), j, i)
		}
	}
	return o
}

// Aspect returns the per-cell compass direction of the downhill
// gradient in radians (0 = north, increasing clockwise). Edge cells
// and cells adjacent to NaN become NaN; flat cells get aspect 0.
func Aspect(g *Grid) *Grid {
	o := NewGrid(g.Nx(), g.Ny(), g.W, g.N, g.Dx, g.Dy, g.SR)
	for j := 0; j < g.Ny(); j++ {
		for i := 0; i < g.Nx(); i++ {
			dzdx, dzdy, ok := gradient(g, j, i)
			if !ok {
				continue
			}
			// Downhill direction is opposite the gradient; the
			// compass angle is measured from north (+y) toward
			// east (+x).
			a := math.Atan2(-dzdx, -dzdy)
			if a < 0 {
				a += 2 * math.Pi
			}
			o.Data.Set(a, j, i)
		}
	}
	return o
}

// Hillshade computes Lambertian cosine-incidence illumination from
// slope and aspect grids for a light source at the given compass
// azimuth and altitude above the horizon (both in degrees). The result
// is clamped to [0, 1]; NaN cells stay NaN.
func Hillshade(slope, aspect *Grid, azimuthDeg, altitudeDeg float64) (*Grid, error) {
	if !slope.sameGeometry(aspect) {
		return nil, fmt.Errorf("reliefmap: slope and aspect grid geometries differ")
	}
	az := azimuthDeg * math.Pi / 180
	alt := altitudeDeg * math.Pi / 180
	o := NewGrid(slope.Nx(), slope.Ny(), slope.W, slope.N, slope.Dx, slope.Dy, slope.SR)
	for j := 0; j < slope.Ny(); j++ {
		for i := 0; i < slope.Nx(); i++ {
			s := slope.Data.Get(j, i)
			a := aspect.Data.Get(j, i)
			if math.IsNaN(s) || math.IsNaN(a) {
				continue
			}
			v := math.Cos(alt)*math.Cos(s) +
				math.Sin(alt)*math.Sin(s)*math.Cos(az-a)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			o.Data.Set(v, j, i)
		}
	}
	return o, nil
}
