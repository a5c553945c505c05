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
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ctessum/geom"
)

const testBoundaryJSON = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "MultiPolygon",
			"coordinates": [[[[7.0, 46.0], [8.0, 46.0], [8.0, 47.0], [7.0, 47.0], [7.0, 46.0]]]]
		}
	}]
}`

func TestBoundaryFetch(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		if r.URL.Path != "/gadm41_CHE_0.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testBoundaryJSON))
	}))
	defer srv.Close()

	f := NewBoundaryFetcher()
	f.BaseURL = srv.URL + "/gadm41_%s_%d.json"

	b, err := f.Fetch(context.Background(), "CHE", 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.SR == nil {
		t.Fatal("boundary has no spatial reference")
	}
	mp, ok := b.Geom.(geom.MultiPolygon)
	if !ok {
		t.Fatalf("boundary geometry is %T; want MultiPolygon", b.Geom)
	}
	if len(mp) != 1 {
		t.Fatalf("boundary has %d polygons; want 1", len(mp))
	}
	bounds := mp.Bounds()
	if different(bounds.Min.X, 7) || different(bounds.Max.Y, 47) {
		t.Errorf("boundary bounds = %+v; want 7..8, 46..47", bounds)
	}

	// A repeated fetch is served from the cache.
	if _, err := f.Fetch(context.Background(), "CHE", 0); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt64(&requests); n != 1 {
		t.Errorf("boundary service hit %d times; want 1", n)
	}
}

func TestBoundaryFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewBoundaryFetcher()
	f.BaseURL = srv.URL + "/gadm41_%s_%d.json"
	if _, err := f.Fetch(context.Background(), "CHE", 0); err == nil {
		t.Error("expected error for failing boundary service")
	}
}

func TestBoundaryFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "FeatureCollection", "features": [{
			"type": "Feature", "properties": {},
			"geometry": {"type": "Point", "coordinates": [7.0, 46.0]}}]}`))
	}))
	defer srv.Close()

	f := NewBoundaryFetcher()
	f.BaseURL = srv.URL + "/gadm41_%s_%d.json"
	if _, err := f.Fetch(context.Background(), "CHE", 0); err == nil {
		t.Error("expected error for non-polygonal boundary")
	}
}

func TestBoundaryReproject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testBoundaryJSON))
	}))
	defer srv.Close()

	f := NewBoundaryFetcher()
	f.BaseURL = srv.URL + "/gadm41_%s_%d.json"
	b, err := f.Fetch(context.Background(), "CHE", 0)
	if err != nil {
		t.Fatal(err)
	}
	merc, err := b.Reproject(testSR(t))
	if err != nil {
		t.Fatal(err)
	}
	bounds := merc.Geom.Bounds()
	// 7°E in Web Mercator.
	const wantMinX = 7.0 / 180.0 * originShift
	if math.Abs(bounds.Min.X-wantMinX) > 1 {
		t.Errorf("reprojected Min.X = %g; want about %g", bounds.Min.X, wantMinX)
	}
	if bounds.Min.Y <= 0 {
		t.Errorf("reprojected Min.Y = %g; want > 0 in the northern hemisphere", bounds.Min.Y)
	}
	// Reprojecting to the same spatial reference is a no-op.
	same, err := merc.Reproject(merc.SR)
	if err != nil {
		t.Fatal(err)
	}
	if same != merc {
		t.Error("reprojection to the same spatial reference should return the input")
	}
}
