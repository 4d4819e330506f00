// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"math"

	"github.com/hwreeves-USGS/gomf/inp"
)

// StepSizes expands one stress period into its time-step sizes. Steps form a
// geometric sequence with ratio Mult; the last step absorbs the floating-
// point roundoff so the sum reproduces Length exactly.
func StepSizes(p *inp.StressPeriod) (res []float64) {
	n := p.Nsteps
	res = make([]float64, n)
	if n == 1 {
		res[0] = p.Length
		return
	}
	var dt float64
	if p.Mult == 1 {
		dt = p.Length / float64(n)
	} else {
		dt = p.Length * (1 - p.Mult) / (1 - math.Pow(p.Mult, float64(n)))
	}
	sum := 0.0
	for i := 0; i < n-1; i++ {
		res[i] = dt
		sum += dt
		dt *= p.Mult
	}
	res[n-1] = p.Length - sum
	return
}
