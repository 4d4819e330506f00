// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gwf implements a reference single-layer groundwater-flow model on
// a structured grid. It is the collaborator exercised by the solver core:
// harmonic-mean internode conductances, specified-head cells via symmetric
// diagonal penalties, wells, and an optional unconfined mode in which the
// transmissivity follows the current head and the problem turns nonlinear.
package gwf

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
	"github.com/hwreeves-USGS/gomf/sln"
)

// penalty applied to the diagonal of specified-head cells; keeps the matrix
// symmetric positive-definite while pinning the head
const chdPenalty = 1e10

// minimum saturated-thickness fraction in unconfined mode
const minThickFrac = 1e-3

// Flow is a structured-grid flow model; cells are numbered row-major and
// cell spacing is unitary
type Flow struct {

	// definition
	name       string
	nrow, ncol int
	n          int
	kh         float64 // hydraulic conductivity
	ss         float64 // specific storage
	h0         float64 // initial head
	top, bot   float64 // cell elevations
	unconfined bool
	chd        []inp.PointBc
	wells      []inp.PointBc

	// registry-owned arrays
	hstep  la.Vector // head at the start of the current time step
	ibound []int     // 1 active, -1 specified head

	// registry bookkeeping
	mm     *mem.Manager
	origin string

	dt float64 // current step size
}

// set factory of models
func init() {
	sln.ModelAllocators["gwf"] = func(mm *mem.Manager, dat *inp.ModelData) (sln.Model, error) {
		return NewFlow(mm, dat)
	}
	sln.ExchangeAllocators["gwfgwf"] = func(dat *inp.ExchangeData) (sln.Exchange, error) {
		return NewLink(dat)
	}
}

// NewFlow builds a flow model from its definition and registers its working
// arrays under origin "gwf/<name>"
func NewFlow(mm *mem.Manager, dat *inp.ModelData) (o *Flow, err error) {

	// validate definition
	if dat.Nrow < 1 || dat.Ncol < 1 {
		return nil, chk.Err("model %q: grid must have at least one row and one column", dat.Name)
	}
	if !(dat.Kh > 0) {
		return nil, chk.Err("model %q: kh must be positive; %g is invalid", dat.Name, dat.Kh)
	}
	if !(dat.Top > dat.Bot) {
		return nil, chk.Err("model %q: top (%g) must be above bot (%g)", dat.Name, dat.Top, dat.Bot)
	}
	if dat.Ss < 0 {
		return nil, chk.Err("model %q: ss must be non-negative; %g is invalid", dat.Name, dat.Ss)
	}
	if dat.Ss == 0 && len(dat.Chd) == 0 {
		return nil, chk.Err("model %q: a steady model (ss = 0) needs at least one specified-head cell", dat.Name)
	}

	// new model
	o = new(Flow)
	o.name = dat.Name
	o.nrow, o.ncol = dat.Nrow, dat.Ncol
	o.n = dat.Nrow * dat.Ncol
	o.kh, o.ss, o.h0 = dat.Kh, dat.Ss, dat.H0
	o.top, o.bot = dat.Top, dat.Bot
	o.unconfined = dat.Unconfined
	o.chd = dat.Chd
	o.wells = dat.Wells
	o.mm = mm
	o.origin = "gwf/" + dat.Name

	// working arrays
	o.hstep, err = mm.AllocReal(o.origin, "h_step", o.n)
	if err != nil {
		return nil, err
	}
	o.ibound, err = mm.AllocInt(o.origin, "ibound", o.n)
	if err != nil {
		return nil, err
	}
	for i := range o.ibound {
		o.ibound[i] = 1
	}
	for _, bc := range o.chd {
		if bc.Cell < 0 || bc.Cell >= o.n {
			return nil, chk.Err("model %q: chd cell %d is outside the grid", dat.Name, bc.Cell)
		}
		o.ibound[bc.Cell] = -1
	}
	for _, w := range o.wells {
		if w.Cell < 0 || w.Cell >= o.n {
			return nil, chk.Err("model %q: well cell %d is outside the grid", dat.Name, w.Cell)
		}
	}
	return
}

// Name returns the model name
func (o *Flow) Name() string { return o.name }

// Ndof returns the number of cells
func (o *Flow) Ndof() int { return o.n }

// InitState fills h with the initial condition; specified heads win
func (o *Flow) InitState(h la.Vector) error {
	h.Fill(o.h0)
	for _, bc := range o.chd {
		h[bc.Cell] = bc.Value
	}
	return nil
}

// InitStep stores the state at the new time level
func (o *Flow) InitStep(h la.Vector, dt float64) {
	copy(o.hstep, h)
	o.dt = dt
}

// thick returns the saturated thickness at head h
func (o *Flow) thick(h float64) float64 {
	b := o.top - o.bot
	if !o.unconfined {
		return b
	}
	t := h - o.bot
	if t > b {
		return b
	}
	if t < minThickFrac*b {
		return minThickFrac * b
	}
	return t
}

// cond returns the internode conductance between cells m and n (harmonic
// mean of the transmissivities; unit spacing)
func (o *Flow) cond(h la.Vector, m, n int) float64 {
	ta := o.kh * o.thick(h[m])
	tb := o.kh * o.thick(h[n])
	return 2 * ta * tb / (ta + tb)
}

// Assemble adds the implicit finite-difference equations at the current
// state: conductance stencil, storage term and boundary terms
func (o *Flow) Assemble(h la.Vector, put func(i, j int, v float64), b la.Vector, dt float64) error {
	sto := o.ss * (o.top - o.bot) // storage capacity per unit area
	for r := 0; r < o.nrow; r++ {
		for c := 0; c < o.ncol; c++ {
			m := r*o.ncol + c
			diag := sto / dt
			b[m] = sto / dt * o.hstep[m]

			// neighbours: left, right, up, down
			if c > 0 {
				cc := o.cond(h, m, m-1)
				diag += cc
				put(m, m-1, -cc)
			}
			if c < o.ncol-1 {
				cc := o.cond(h, m, m+1)
				diag += cc
				put(m, m+1, -cc)
			}
			if r > 0 {
				cc := o.cond(h, m, m-o.ncol)
				diag += cc
				put(m, m-o.ncol, -cc)
			}
			if r < o.nrow-1 {
				cc := o.cond(h, m, m+o.ncol)
				diag += cc
				put(m, m+o.ncol, -cc)
			}
			put(m, m, diag)
		}
	}

	// wells
	for _, w := range o.wells {
		b[w.Cell] += w.Value
	}

	// specified heads: symmetric penalty
	for _, bc := range o.chd {
		put(bc.Cell, bc.Cell, chdPenalty)
		b[bc.Cell] += chdPenalty * bc.Value
	}
	return nil
}

// ApplyUpdate applies the update; in unconfined mode the head is kept above
// the cell bottom so the saturated thickness stays positive
func (o *Flow) ApplyUpdate(h, δ la.Vector) {
	for i := 0; i < o.n; i++ {
		h[i] += δ[i]
		if o.unconfined && h[i] < o.bot {
			h[i] = o.bot + minThickFrac*(o.top-o.bot)
		}
	}
}

// Probe fills change with the head difference between two states
func (o *Flow) Probe(change, hOld, hNew la.Vector) {
	for i := 0; i < o.n; i++ {
		change[i] = hNew[i] - hOld[i]
	}
}

// End releases this model's registry storage
func (o *Flow) End() {
	o.mm.ReleaseOrigin(o.origin)
}
