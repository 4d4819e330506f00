// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/io"

	"github.com/hwreeves-USGS/gomf/sln"

	// register model and exchange types
	_ "github.com/hwreeves-USGS/gomf/gwf"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.Pfred("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)

	// message
	if verbose {
		io.Pf("\nGomf -- Groundwater Flow Solver\n\n")
		io.Pf("  filename path = %v\n", fnamepath)
		io.Pf("  show messages = %v\n\n", verbose)
	}

	// analysis data
	analysis := sln.NewMain(fnamepath, verbose)
	defer analysis.End()

	// run simulation; the summary is printed and saved regardless of the
	// outcome, and a step that fails to converge terminates with an error
	err := analysis.Run()
	if err != nil {
		io.Pfred("%v\n", err)
		os.Exit(1)
	}
}
