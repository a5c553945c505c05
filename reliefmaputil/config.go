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

package reliefmaputil

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ConfigData holds the pipeline parameters for one rendering run.
type ConfigData struct {
	Country    string
	AdminLevel int
	Zoom       int

	Exaggeration  float64
	LightAzimuth  float64
	LightAltitude float64

	PopulationCutoff float64

	Output string
	DPI    int
}

// NewConfig reads and validates the configuration.
func NewConfig(cfg *viper.Viper) (*ConfigData, error) {
	c := &ConfigData{
		Country:          strings.ToUpper(cast.ToString(cfg.Get("country"))),
		AdminLevel:       cast.ToInt(cfg.Get("adminlevel")),
		Zoom:             cast.ToInt(cfg.Get("zoom")),
		Exaggeration:     cast.ToFloat64(cfg.Get("exaggeration")),
		LightAzimuth:     cast.ToFloat64(cfg.Get("lightazimuth")),
		LightAltitude:    cast.ToFloat64(cfg.Get("lightaltitude")),
		PopulationCutoff: cast.ToFloat64(cfg.Get("populationcutoff")),
		Output:           cast.ToString(cfg.Get("output")),
		DPI:              cast.ToInt(cfg.Get("dpi")),
	}
	if len(c.Country) != 3 {
		return nil, fmt.Errorf("reliefmap: country must be an ISO 3166-1 alpha-3 code; got %q", c.Country)
	}
	if c.AdminLevel < 0 {
		return nil, fmt.Errorf("reliefmap: adminlevel must be >= 0; got %d", c.AdminLevel)
	}
	if c.Zoom < 0 || c.Zoom > 15 {
		return nil, fmt.Errorf("reliefmap: zoom must be between 0 and 15; got %d", c.Zoom)
	}
	if c.LightAltitude <= 0 || c.LightAltitude > 90 {
		return nil, fmt.Errorf("reliefmap: lightaltitude must be in (0, 90]; got %g", c.LightAltitude)
	}
	if c.Output == "" {
		return nil, fmt.Errorf("reliefmap: output path must not be empty")
	}
	if c.DPI <= 0 {
		return nil, fmt.Errorf("reliefmap: dpi must be positive; got %d", c.DPI)
	}
	return c, nil
}
