// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build ignore

package main

import (
	"math"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"

	"github.com/hwreeves-USGS/gomf/sln"
)

// ConvPlot plots the convergence history of a finished run: the largest head
// change per outer iteration (log scale) and, when the run kept residual
// traces, the inner residual norms. Reads the summary written next to the
// simulation file's output directory.

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.Pfred("ERROR: %v\n", err)
		}
	}()

	// input data
	simfn, fnkey := io.ArgToFilename(0, "steady", ".sim", true)
	dirout := io.ArgToString(1, "/tmp/gomf/"+fnkey)
	enctype := io.ArgToString(2, "json")

	// print input data
	io.Pf("\nsimulation filename = %v\n", simfn)
	io.Pf("output directory    = %v\n", dirout)
	io.Pf("encoder             = %v\n\n", enctype)

	// read summary
	sum, err := sln.ReadSum(dirout, fnkey, enctype)
	if err != nil {
		io.Pfred("cannot read summary:\n%v\n", err)
		return
	}

	// one curve per (time step, group)
	plt.Reset(true, nil)
	for _, rec := range sum.Records {
		var X, Y []float64
		for _, it := range rec.Iters {
			X = append(X, float64(it.Outer))
			Y = append(Y, math.Log10(math.Abs(it.MaxChange)+1e-30))
		}
		plt.Plot(X, Y, &plt.A{M: ".", L: io.Sf("%s p%d s%d", rec.Group, rec.Period, rec.Step)})
	}
	plt.Gll("outer iteration", "log10(max head change)", nil)
	plt.Save("/tmp/gomf", "convplot")
}
