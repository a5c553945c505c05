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
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	g := NewGrid(3, 3, 0, 30, 10, 10, testSR(t))
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			g.Data.Set(float64(j*3+i), j, i)
		}
	}
	g.Data.Set(math.NaN(), 1, 2)

	o, err := Resample(g, g)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			if different(o.Data.Get(j, i), g.Data.Get(j, i)) {
				t.Errorf("identity resample cell (%d,%d) = %g; want %g",
					j, i, o.Data.Get(j, i), g.Data.Get(j, i))
			}
		}
	}
}

func TestResampleOffsetGrid(t *testing.T) {
	src := NewGrid(2, 2, 0, 20, 10, 10, testSR(t))
	src.Data.Set(1, 0, 0)
	src.Data.Set(2, 0, 1)
	src.Data.Set(3, 1, 0)
	src.Data.Set(4, 1, 1)

	// One cell centered exactly between the four source cells.
	target := NewGrid(1, 1, 5, 15, 10, 10, testSR(t))
	o, err := Resample(src, target)
	if err != nil {
		t.Fatal(err)
	}
	if v := o.Data.Get(0, 0); different(v, 2.5) {
		t.Errorf("resampled value = %g; want 2.5", v)
	}
}

func TestResamplePropagatesNoData(t *testing.T) {
	src := NewGrid(2, 2, 0, 20, 10, 10, testSR(t))
	src.Data.Set(1, 0, 0)
	src.Data.Set(math.NaN(), 0, 1)
	src.Data.Set(3, 1, 0)
	src.Data.Set(4, 1, 1)

	target := NewGrid(1, 1, 5, 15, 10, 10, testSR(t))
	o, err := Resample(src, target)
	if err != nil {
		t.Fatal(err)
	}
	// Interpolation touching no-data is no-data, never zero.
	if v := o.Data.Get(0, 0); !math.IsNaN(v) {
		t.Errorf("resampled value with NaN contributor = %g; want NaN", v)
	}
}

// maskFixture returns a hillshade grid and a population grid sharing
// its geometry, with population present in two cells: one above and
// one below the cutoff.
func maskFixture(t *testing.T) (hillshade, pop *Grid) {
	t.Helper()
	hillshade = NewGrid(3, 3, 0, 30, 10, 10, testSR(t))
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			hillshade.Data.Set(0.5, j, i)
		}
	}
	pop = NewGrid(3, 3, 0, 30, 10, 10, testSR(t))
	pop.Data.Set(7, 0, 0)    // populated
	pop.Data.Set(0.05, 2, 2) // below cutoff
	return hillshade, pop
}

func TestMasksAreDisjoint(t *testing.T) {
	hillshade, pop := maskFixture(t)
	terrain, err := TerrainOnly(hillshade, pop)
	if err != nil {
		t.Fatal(err)
	}
	popMask := PopulationOnly(pop, DefaultPopulationCutoff)

	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			tv := terrain.Data.Get(j, i)
			pv := popMask.Data.Get(j, i)
			if !math.IsNaN(tv) && !math.IsNaN(pv) {
				t.Errorf("cell (%d,%d) present in both masks", j, i)
			}
			// Where the resampled population is no-data, the
			// terrain mask carries the hillshade value through.
			if math.IsNaN(pop.Data.Get(j, i)) && different(tv, hillshade.Data.Get(j, i)) {
				t.Errorf("terrain mask (%d,%d) = %g; want hillshade value %g",
					j, i, tv, hillshade.Data.Get(j, i))
			}
		}
	}
}

func TestPopulationCutoff(t *testing.T) {
	_, pop := maskFixture(t)
	popMask := PopulationOnly(pop, DefaultPopulationCutoff)

	if v := popMask.Data.Get(0, 0); different(v, 7) {
		t.Errorf("populated cell = %g; want 7", v)
	}
	if v := popMask.Data.Get(2, 2); !math.IsNaN(v) {
		t.Errorf("sub-cutoff cell = %g; want NaN", v)
	}
	// Values exactly at the cutoff are excluded too.
	pop.Data.Set(DefaultPopulationCutoff, 1, 1)
	popMask = PopulationOnly(pop, DefaultPopulationCutoff)
	if v := popMask.Data.Get(1, 1); !math.IsNaN(v) {
		t.Errorf("cell at cutoff = %g; want NaN", v)
	}
	// The input is unchanged.
	if different(pop.Data.Get(2, 2), 0.05) {
		t.Error("PopulationOnly modified its input")
	}
}

func TestTerrainOnlyCoversPopulatedCells(t *testing.T) {
	hillshade, pop := maskFixture(t)
	terrain, err := TerrainOnly(hillshade, pop)
	if err != nil {
		t.Fatal(err)
	}
	// Both populated cells are claimed by the population side, even
	// the one later dropped by the cutoff: the masks partition on
	// population coverage, not on the cutoff.
	for _, idx := range [][2]int{{0, 0}, {2, 2}} {
		if v := terrain.Data.Get(idx[0], idx[1]); !math.IsNaN(v) {
			t.Errorf("terrain mask (%d,%d) = %g; want NaN", idx[0], idx[1], v)
		}
	}
}

func TestTerrainOnlyGeometryMismatch(t *testing.T) {
	hillshade, _ := maskFixture(t)
	pop := NewGrid(2, 2, 0, 20, 10, 10, testSR(t))
	if _, err := TerrainOnly(hillshade, pop); err == nil {
		t.Error("expected geometry mismatch error")
	}
}
