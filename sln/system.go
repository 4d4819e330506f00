// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/hwreeves-USGS/gomf/mem"
	"github.com/hwreeves-USGS/gomf/pcg"
)

// System is the joint linear system of one solution group: the member models
// stacked with per-model degree-of-freedom offsets, plus the exchange terms.
// All vectors live in the variable registry under the group's origin tag.
type System struct {

	// members
	Models    []Model    // member models, declaration order
	Exchanges []Exchange // member exchanges, declaration order

	// degree-of-freedom map
	Offs []int // [nmodels] joint offset of each model
	Ndof int   // total number of degrees of freedom

	// state and work vectors (registry-owned)
	H    la.Vector // current state
	Hold la.Vector // state before the last update
	X    la.Vector // linear-solver solution
	ΔH   la.Vector // state change of the last update
	B    la.Vector // joint right-hand side

	// joint matrix
	Kb *pcg.Builder // assembly side
	A  *pcg.Sparse  // compressed side, rebuilt every assembly

	// registry bookkeeping
	mm     *mem.Manager
	origin string

	exa []int // [nexchanges] model index of member A
	exb []int // [nexchanges] model index of member B
}

// NewSystem builds the joint system of one solution group.
//  Input:
//   mm        -- variable registry
//   origin    -- registry origin tag; e.g. "sln/g1"
//   models    -- member models, declaration order
//   exchanges -- member exchanges; each must couple two member models
func NewSystem(mm *mem.Manager, origin string, models []Model, exchanges []Exchange) (o *System, err error) {
	o = new(System)
	o.Models = models
	o.Exchanges = exchanges
	o.mm = mm
	o.origin = origin

	// degree-of-freedom map
	o.Offs = make([]int, len(models))
	for i, m := range models {
		o.Offs[i] = o.Ndof
		if m.Ndof() < 1 {
			return nil, chk.Err("model %q has no degrees of freedom", m.Name())
		}
		o.Ndof += m.Ndof()
	}

	// resolve exchange members
	idx := make(map[string]int)
	for i, m := range models {
		idx[m.Name()] = i
	}
	o.exa = make([]int, len(exchanges))
	o.exb = make([]int, len(exchanges))
	for i, e := range exchanges {
		na, nb := e.ModelNames()
		ia, oka := idx[na]
		ib, okb := idx[nb]
		if !oka || !okb {
			return nil, chk.Err("exchange %q couples models (%q, %q) outside this solution group", e.Name(), na, nb)
		}
		o.exa[i] = ia
		o.exb[i] = ib
	}

	// registry storage
	names := []string{"x", "x_old", "x_new", "dx", "rhs"}
	vecs := make([]la.Vector, len(names))
	for i, name := range names {
		vecs[i], err = mm.AllocReal(origin, name, o.Ndof)
		if err != nil {
			return nil, err
		}
	}
	o.H, o.Hold, o.X, o.ΔH, o.B = vecs[0], vecs[1], vecs[2], vecs[3], vecs[4]
	o.Kb = pcg.NewBuilder(o.Ndof)

	// initial state
	for im, m := range models {
		err = m.InitState(o.Slice(o.H, im))
		if err != nil {
			return nil, chk.Err("model %q initial state failed:\n%v", m.Name(), err)
		}
	}
	return
}

// InitStep tells every member model that a new time step begins
func (o *System) InitStep(dt float64) {
	for im, m := range o.Models {
		m.InitStep(o.Slice(o.H, im), dt)
	}
}

// Slice returns the part of a joint vector belonging to model im
func (o *System) Slice(v la.Vector, im int) la.Vector {
	lo := o.Offs[im]
	hi := lo + o.Models[im].Ndof()
	return v[lo:hi]
}

// Assemble asks every member model and exchange for its contribution at the
// current state and compresses the joint matrix
func (o *System) Assemble(dt float64) (err error) {
	o.Kb.Start()
	o.B.Fill(0)

	// models: diagonal blocks
	for im, m := range o.Models {
		off := o.Offs[im]
		put := func(i, j int, v float64) { o.Kb.Put(off+i, off+j, v) }
		err = m.Assemble(o.Slice(o.H, im), put, o.Slice(o.B, im), dt)
		if err != nil {
			return chk.Err("model %q assembly failed:\n%v", m.Name(), err)
		}
	}

	// exchanges: off-diagonal blocks and cross terms
	for ie, e := range o.Exchanges {
		ia, ib := o.exa[ie], o.exb[ie]
		offa, offb := o.Offs[ia], o.Offs[ib]
		c := Coupling{
			Ha:    o.Slice(o.H, ia),
			Hb:    o.Slice(o.H, ib),
			Ba:    o.Slice(o.B, ia),
			Bb:    o.Slice(o.B, ib),
			PutAA: func(i, j int, v float64) { o.Kb.Put(offa+i, offa+j, v) },
			PutBB: func(i, j int, v float64) { o.Kb.Put(offb+i, offb+j, v) },
			PutAB: func(i, j int, v float64) { o.Kb.Put(offa+i, offb+j, v) },
			PutBA: func(i, j int, v float64) { o.Kb.Put(offb+i, offa+j, v) },
			Dt:    dt,
			OffA:  offa,
			OffB:  offb,
		}
		err = e.Assemble(&c)
		if err != nil {
			return chk.Err("exchange %q assembly failed:\n%v", e.Name(), err)
		}
	}
	o.A = o.Kb.Build()
	return
}

// Loc translates a joint degree-of-freedom index into (model name, cell)
func (o *System) Loc(dof int) (model string, cell int) {
	for im := len(o.Models) - 1; im >= 0; im-- {
		if dof >= o.Offs[im] {
			return o.Models[im].Name(), dof - o.Offs[im]
		}
	}
	return "", -1
}

// End releases registry storage of the system and its models
func (o *System) End() {
	for _, m := range o.Models {
		m.End()
	}
	o.mm.ReleaseOrigin(o.origin)
}
