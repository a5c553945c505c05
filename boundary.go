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
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/requestcache"
)

// gadmURL is the administrative boundary service: GADM v4.1 GeoJSON
// addressed by ISO 3166-1 alpha-3 country code and administrative
// level.
const gadmURL = "https://geodata.ucdavis.edu/gadm/gadm4.1/json/gadm41_%s_%d.json"

// longlatProj is the spatial reference of the boundary service output.
const longlatProj = "+proj=longlat +datum=WGS84 +no_defs"

// Boundary is an administrative boundary polygon with its coordinate
// reference system.
type Boundary struct {
	Geom geom.Polygonal
	SR   *proj.SR
}

// Reproject returns the boundary transformed into the coordinate
// reference system sr.
func (b *Boundary) Reproject(sr *proj.SR) (*Boundary, error) {
	if b.SR.Equal(sr, 10) {
		return b, nil
	}
	ct, err := b.SR.NewTransform(sr)
	if err != nil {
		return nil, fmt.Errorf("reliefmap: creating boundary transform: %v", err)
	}
	g, err := b.Geom.Transform(ct)
	if err != nil {
		return nil, fmt.Errorf("reliefmap: reprojecting boundary: %v", err)
	}
	p, ok := g.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("reliefmap: reprojected boundary is %T; expected polygon", g)
	}
	return &Boundary{Geom: p, SR: sr}, nil
}

// BoundaryFetcher downloads administrative boundary polygons.
// Downloads are deduplicated and cached on disk in a temporary
// directory, so repeated fetches within one process run do not hit the
// network twice.
type BoundaryFetcher struct {
	// BaseURL is a format template taking the ISO country code and
	// the administrative level. It defaults to the GADM service.
	BaseURL string

	cache *requestcache.Cache
}

// NewBoundaryFetcher creates a BoundaryFetcher for the default
// boundary service.
func NewBoundaryFetcher() *BoundaryFetcher {
	return &BoundaryFetcher{BaseURL: gadmURL}
}

// Fetch downloads the boundary for the given country at the given
// administrative level (0 = national). Network and decoding failures
// are fatal to the caller; there are no retries.
func (f *BoundaryFetcher) Fetch(ctx context.Context, country string, level int) (*Boundary, error) {
	if f.cache == nil {
		dir, err := os.MkdirTemp("", "reliefmap")
		if err != nil {
			return nil, fmt.Errorf("reliefmap: creating boundary cache directory: %v", err)
		}
		f.cache = requestcache.NewCache(fetchBytes, 1,
			requestcache.Deduplicate(), requestcache.Memory(1),
			requestcache.Disk(dir, requestcache.MarshalGob, requestcache.UnmarshalGob))
	}
	url := fmt.Sprintf(f.BaseURL, country, level)
	req := f.cache.NewRequest(ctx, url, fmt.Sprintf("boundary_%s_%d", country, level))
	result, err := req.Result()
	if err != nil {
		return nil, fmt.Errorf("reliefmap: downloading boundary for %s: %v", country, err)
	}
	p, err := decodeBoundary(result.([]byte))
	if err != nil {
		return nil, fmt.Errorf("reliefmap: decoding boundary for %s: %v", country, err)
	}
	sr, err := proj.Parse(longlatProj)
	if err != nil {
		return nil, err
	}
	return &Boundary{Geom: p, SR: sr}, nil
}

// decodeBoundary parses a GeoJSON feature collection and merges all of
// its polygonal features into a single MultiPolygon.
func decodeBoundary(b []byte) (geom.Polygonal, error) {
	gj, err := carto.LoadGeoJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	geoms, err := gj.GetGeometry()
	if err != nil {
		return nil, err
	}
	var mp geom.MultiPolygon
	for _, g := range geoms {
		switch t := g.(type) {
		case geom.Polygon:
			mp = append(mp, t)
		case geom.MultiPolygon:
			mp = append(mp, t...)
		default:
			return nil, fmt.Errorf("boundary feature is %T; expected polygon", g)
		}
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("boundary response contains no polygons")
	}
	return mp, nil
}

// fetchBytes downloads the contents of a URL.
func fetchBytes(ctx context.Context, request interface{}) (interface{}, error) {
	url := request.(string)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
