// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"github.com/cpmech/gosl/chk"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
)

// Group bundles the models and exchanges solved jointly every time step by
// one Nonlinear instance. Groups are solved in declaration order; a later
// group sees the converged state of the earlier ones within the same step.
type Group struct {
	Name string     // group name
	Sys  *System    // joint system
	Nl   *Nonlinear // outer solver (state private to this group)
}

// NewGroup builds one solution group from its definition.
//  Input:
//   mm   -- variable registry; the group registers its joint vectors and the
//           linear solver's work vectors under origin "sln/<name>"
//   dat  -- group definition
//   sim  -- whole simulation definition (solver data, model/exchange lookup)
//   pool -- models allocated beforehand, keyed by name
func NewGroup(mm *mem.Manager, dat *inp.GroupData, sim *inp.Simulation, pool map[string]Model) (o *Group, err error) {
	o = new(Group)
	o.Name = dat.Name

	// members in declaration order
	models := make([]Model, len(dat.Models))
	for i, name := range dat.Models {
		m, ok := pool[name]
		if !ok {
			return nil, chk.Err("group %q: model %q was not allocated", dat.Name, name)
		}
		models[i] = m
	}
	exchanges := make([]Exchange, len(dat.Exchanges))
	for i, name := range dat.Exchanges {
		edat := sim.GetExchange(name)
		if edat == nil {
			return nil, chk.Err("group %q: unknown exchange %q", dat.Name, name)
		}
		alloc, ok := ExchangeAllocators[edat.Type]
		if !ok {
			return nil, chk.Err("cannot find exchange type named %q", edat.Type)
		}
		exchanges[i], err = alloc(edat)
		if err != nil {
			return nil, err
		}
	}

	// joint system and outer solver
	origin := "sln/" + dat.Name
	o.Sys, err = NewSystem(mm, origin, models, exchanges)
	if err != nil {
		return nil, err
	}
	o.Nl, err = NewNonlinear(mm, origin, o.Sys, sim.Solver, sim.LinSol)
	if err != nil {
		return nil, err
	}
	return
}

// SolveStep solves this group for one time step. Models advance to the new
// time level and solver state is reset first, then the outer iteration runs
// to convergence or its cap.
func (o *Group) SolveStep(dt float64, verbose bool) (outer int, status Status, err error) {
	o.Sys.InitStep(dt)
	o.Nl.Reset()
	return o.Nl.Solve(dt, verbose)
}

// End releases the group's registry storage
func (o *Group) End() {
	o.Sys.End()
}
