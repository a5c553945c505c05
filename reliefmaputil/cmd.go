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

// Package reliefmaputil wires the reliefmap pipeline to its
// command-line interface and configuration.
package reliefmaputil

import (
	"fmt"

	"github.com/spatialviz/reliefmap"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage string
	defaultVal  interface{}
	flagsets    []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to ReliefMap.
	// The defaults reproduce the fixed Switzerland map; overriding
	// them retargets the same pipeline.
	options = []struct {
		name, usage string
		defaultVal  interface{}
		flagsets    []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "country",
			usage: `
              country is the ISO 3166-1 alpha-3 code of the country to map.`,
			defaultVal: "CHE",
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "adminlevel",
			usage: `
              adminlevel is the administrative level of the boundary to
              fetch; level 0 is the national boundary.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "zoom",
			usage: `
              zoom is the elevation tile zoom level.`,
			defaultVal: reliefmap.TerrainZoom,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "exaggeration",
			usage: `
              exaggeration is the vertical exaggeration factor applied to
              elevations before hillshading. It is purely cosmetic.`,
			defaultVal: reliefmap.DefaultExaggeration,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "lightazimuth",
			usage: `
              lightazimuth is the hillshade light source direction in
              degrees clockwise from north.`,
			defaultVal: reliefmap.DefaultLightAzimuth,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "lightaltitude",
			usage: `
              lightaltitude is the hillshade light source height in
              degrees above the horizon.`,
			defaultVal: reliefmap.DefaultLightAltitude,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "populationcutoff",
			usage: `
              populationcutoff is the population count at or below which a
              resampled cell is treated as unpopulated.`,
			defaultVal: reliefmap.DefaultPopulationCutoff,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the path of the PNG map to write. An existing file
              at this path is overwritten.`,
			defaultVal: "switzerland_population_relief.png",
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
		{
			name: "dpi",
			usage: `
              dpi is the output image resolution in dots per inch.`,
			defaultVal: 600,
			flagsets:   []*pflag.FlagSet{drawCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RELIEFMAP")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.String(option.name, v, option.usage)
			case bool:
				set.Bool(option.name, v, option.usage)
			case int:
				set.Int(option.name, v, option.usage)
			case float64:
				set.Float64(option.name, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(drawCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("reliefmap: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "reliefmap",
	Short: "Render population density over shaded terrain relief.",
	Long: `ReliefMap downloads a national boundary, a population raster, and
elevation tiles, derives a hillshade, composites population density over
the terrain, and writes a single static map image.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format
'RELIEFMAP_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ReliefMap.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ReliefMap v%s\n", reliefmap.Version)
	},
	DisableAutoGenTag: true,
}

// drawCmd runs the full pipeline and writes the map.
var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Fetch data and render the map.",
	Long: `draw runs the full pipeline: it fetches the boundary, population,
and elevation data, derives the hillshade, composites the layers, and
writes the output image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := NewConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cfg)
	},
	DisableAutoGenTag: true,
}
