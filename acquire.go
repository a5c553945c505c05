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
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
)

// worldPopURL is the population raster service: per-country people
// counts on a 100 m grid for epoch 2020, served as a gzip-compressed
// Esri ASCII grid. The template takes the upper- and lower-case ISO
// country code.
const worldPopURL = "https://data.worldpop.org/GIS/Population/Global_2000_2020_100m/2020/%s/%s_ppp_2020.asc.gz"

// terrainTileURL is the elevation tile service: Terrarium-encoded PNG
// tiles addressed by zoom/x/y.
const terrainTileURL = "https://s3.amazonaws.com/elevation-tiles-prod/terrarium/%d/%d/%d.png"

// TerrainZoom is the fixed zoom level at which elevation tiles are
// requested.
const TerrainZoom = 10

const tileSize = 256 // pixels per tile edge

// webMercatorProj is the spatial reference of the elevation tile grid.
const webMercatorProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

// originShift is half the extent of the Web Mercator plane [m].
const originShift = math.Pi * 6378137

// PopulationFetcher downloads population-count rasters.
type PopulationFetcher struct {
	// BaseURL is a format template taking the upper- and lower-case
	// ISO country code. It defaults to the WorldPop 2020 100 m
	// dataset.
	BaseURL string
}

// NewPopulationFetcher creates a PopulationFetcher for the default
// population service.
func NewPopulationFetcher() *PopulationFetcher {
	return &PopulationFetcher{BaseURL: worldPopURL}
}

// Fetch downloads the pre-built population raster for the given
// country. The raster keeps its native resolution and georeferencing;
// alignment with other grids happens later, during compositing.
func (f *PopulationFetcher) Fetch(ctx context.Context, country string) (*Grid, error) {
	url := fmt.Sprintf(f.BaseURL, strings.ToUpper(country), strings.ToLower(country))
	b, err := fetchBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("reliefmap: downloading population raster: %v", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(b.([]byte)))
	if err != nil {
		return nil, fmt.Errorf("reliefmap: decompressing population raster: %v", err)
	}
	defer gz.Close()
	g, err := ParseASCIIGrid(bufio.NewReader(gz))
	if err != nil {
		return nil, fmt.Errorf("reliefmap: parsing population raster: %v", err)
	}
	return g, nil
}

// ParseASCIIGrid reads an Esri ASCII grid raster. Both corner- and
// center-registered origins are accepted, and cells equal to the
// header's NODATA value become NaN. The result is georeferenced as
// WGS84 longitude/latitude.
func ParseASCIIGrid(r *bufio.Reader) (*Grid, error) {
	var ncols, nrows int
	var xll, yll, cellsize, nodata float64
	nodata = -9999
	centered := false

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 1024*1024), 1024*1024)
	scan.Split(bufio.ScanWords)
	next := func() (string, error) {
		if !scan.Scan() {
			if err := scan.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("unexpected end of ASCII grid")
		}
		return scan.Text(), nil
	}

	// Header: keyword-value pairs until the first purely numeric token.
	var firstValue string
	for {
		key, err := next()
		if err != nil {
			return nil, err
		}
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			firstValue = key
			break
		}
		val, err := next()
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("ASCII grid header %s: %v", key, err)
		}
		switch strings.ToLower(key) {
		case "ncols":
			ncols = int(v)
		case "nrows":
			nrows = int(v)
		case "xllcorner":
			xll = v
		case "yllcorner":
			yll = v
		case "xllcenter":
			xll = v
			centered = true
		case "yllcenter":
			yll = v
			centered = true
		case "cellsize":
			cellsize = v
		case "nodata_value":
			nodata = v
		default:
			return nil, fmt.Errorf("unknown ASCII grid header %q", key)
		}
	}
	if ncols <= 0 || nrows <= 0 || cellsize <= 0 {
		return nil, fmt.Errorf("incomplete ASCII grid header")
	}
	if centered {
		xll -= cellsize / 2
		yll -= cellsize / 2
	}

	sr, err := proj.Parse(longlatProj)
	if err != nil {
		return nil, err
	}
	g := NewGrid(ncols, nrows, xll, yll+float64(nrows)*cellsize, cellsize, cellsize, sr)
	for j := 0; j < nrows; j++ {
		for i := 0; i < ncols; i++ {
			var tok string
			if j == 0 && i == 0 {
				tok = firstValue
			} else {
				tok, err = next()
				if err != nil {
					return nil, err
				}
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("ASCII grid cell (%d,%d): %v", j, i, err)
			}
			if v == nodata {
				v = math.NaN()
			}
			g.Data.Set(v, j, i)
		}
	}
	return g, nil
}

// ElevationFetcher downloads and stitches elevation tiles.
type ElevationFetcher struct {
	// BaseURL is a format template taking zoom, x, and y. It defaults
	// to the AWS Terrarium terrain tile service.
	BaseURL string
	Zoom    int
}

// NewElevationFetcher creates an ElevationFetcher for the default
// elevation tile service at the fixed zoom level.
func NewElevationFetcher() *ElevationFetcher {
	return &ElevationFetcher{BaseURL: terrainTileURL, Zoom: TerrainZoom}
}

// Fetch downloads every elevation tile covering the boundary's
// bounding box, stitches them into a single Web Mercator grid, crops
// the grid to the bounding box, and masks cells outside the exact
// polygon to NaN.
func (f *ElevationFetcher) Fetch(ctx context.Context, b *Boundary) (*Grid, error) {
	sr, err := proj.Parse(webMercatorProj)
	if err != nil {
		return nil, err
	}
	merc, err := b.Reproject(sr)
	if err != nil {
		return nil, err
	}

	bounds := b.Geom.Bounds() // longitude/latitude
	tx0, ty0 := tileIndex(bounds.Min.X, bounds.Max.Y, f.Zoom)
	tx1, ty1 := tileIndex(bounds.Max.X, bounds.Min.Y, f.Zoom)

	tileSpan := 2 * originShift / float64(int(1)<<uint(f.Zoom))
	cell := tileSpan / tileSize
	g := NewGrid((tx1-tx0+1)*tileSize, (ty1-ty0+1)*tileSize,
		-originShift+float64(tx0)*tileSpan, originShift-float64(ty0)*tileSpan,
		cell, cell, sr)

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			img, err := f.fetchTile(ctx, tx, ty)
			if err != nil {
				return nil, err
			}
			for py := 0; py < tileSize; py++ {
				for px := 0; px < tileSize; px++ {
					z := terrariumElevation(img.At(px, py))
					g.Data.Set(z, (ty-ty0)*tileSize+py, (tx-tx0)*tileSize+px)
				}
			}
		}
	}

	g = g.Crop(merc.Geom.Bounds())
	return g.MaskPolygon(merc.Geom), nil
}

func (f *ElevationFetcher) fetchTile(ctx context.Context, x, y int) (image.Image, error) {
	url := fmt.Sprintf(f.BaseURL, f.Zoom, x, y)
	b, err := fetchBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("reliefmap: downloading elevation tile %d/%d: %v", x, y, err)
	}
	img, err := png.Decode(bytes.NewReader(b.([]byte)))
	if err != nil {
		return nil, fmt.Errorf("reliefmap: decoding elevation tile %d/%d: %v", x, y, err)
	}
	return img, nil
}

// tileIndex returns the slippy-map tile containing the given
// longitude/latitude at the given zoom level.
func tileIndex(lon, lat float64, zoom int) (x, y int) {
	n := float64(int(1) << uint(zoom))
	x = int(math.Floor((lon + 180) / 360 * n))
	latR := lat * math.Pi / 180
	y = int(math.Floor((1 - math.Log(math.Tan(latR)+1/math.Cos(latR))/math.Pi) / 2 * n))
	max := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	} else if y > max {
		y = max
	}
	return x, y
}

// terrariumElevation decodes one Terrarium-encoded pixel to an
// elevation in meters.
func terrariumElevation(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return float64(r>>8)*256 + float64(g>>8) + float64(b>>8)/256 - 32768
}
