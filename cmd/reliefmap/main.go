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

// Command reliefmap renders a static map of population density
// composited over shaded terrain relief.
package main

import (
	"fmt"
	"os"

	"github.com/spatialviz/reliefmap/reliefmaputil"
)

func main() {
	if err := reliefmaputil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
