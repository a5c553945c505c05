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
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialviz/reliefmap"
)

// Run executes the full rendering pipeline with the given
// configuration and writes the map image. Any stage failure aborts the
// run; there are no retries and no partial outputs.
func Run(ctx context.Context, cfg *ConfigData) error {
	// Receive and log progress messages from the pipeline.
	msg := make(chan string)
	go func() {
		for m := range msg {
			logrus.Info(m)
		}
	}()
	defer close(msg)

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("reliefmap: creating output file: %v", err)
	}
	defer f.Close()

	ef := reliefmap.NewElevationFetcher()
	ef.Zoom = cfg.Zoom

	renderCfg := reliefmap.DefaultRenderConfig()
	renderCfg.DPI = cfg.DPI

	p := &reliefmap.Pipeline{
		Msg: msg,
		Stages: []reliefmap.StageFunc{
			reliefmap.FetchData(ctx, reliefmap.NewBoundaryFetcher(),
				reliefmap.NewPopulationFetcher(), ef, cfg.Country, cfg.AdminLevel),
			reliefmap.DeriveHillshade(cfg.Exaggeration, cfg.LightAzimuth, cfg.LightAltitude),
			reliefmap.Composite(cfg.PopulationCutoff),
			reliefmap.WriteMap(f, renderCfg),
		},
	}
	if err := p.Run(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("reliefmap: writing output file: %v", err)
	}
	logrus.Infof("Map written to %s", cfg.Output)
	return nil
}
