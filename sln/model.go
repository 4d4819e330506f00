// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sln implements the solution core: the nonlinear (outer) iteration,
// solution groups bundling jointly-solved models, the temporal loop driving
// the groups through the stress-period schedule, and the run summary. The
// physical discretisation stays behind the Model and Exchange interfaces.
package sln

import (
	"github.com/cpmech/gosl/la"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
)

// Model is the collaborator that discretises one physical system. The solver
// core only needs it to linearise itself around the current state and to
// apply/measure state updates. Implementations register their working arrays
// with the variable registry under their own origin tag.
type Model interface {

	// Name returns the unique model name
	Name() string

	// Ndof returns the number of degrees of freedom
	Ndof() int

	// InitState fills this model's slice of the joint state with its
	// initial condition; called once when the solution group is built
	InitState(h la.Vector) error

	// InitStep marks the beginning of a time step, giving the model the
	// chance to store h as the previous time level for storage terms
	InitStep(h la.Vector, dt float64)

	// Assemble adds the linearised coefficients and the right-hand side of
	// this model at the current state h (this model's slice of the joint
	// state). put writes into this model's diagonal block of the joint
	// matrix using local indices; b is this model's slice of the joint
	// right-hand side. dt is the current time-step size.
	Assemble(h la.Vector, put func(i, j int, v float64), b la.Vector, dt float64) error

	// ApplyUpdate applies the (possibly damped) update δ to the state h.
	// Implementations may clamp the result; e.g. keeping heads above the
	// cell bottom in unconfined mode.
	ApplyUpdate(h, δ la.Vector)

	// Probe fills change with the per-degree-of-freedom convergence measure
	// between two states; the plain implementation is hNew - hOld
	Probe(change, hOld, hNew la.Vector)

	// End releases this model's registry storage
	End()
}

// Coupling gives an exchange offset-aware access to the joint system of its
// solution group during assembly
type Coupling struct {
	Ha, Hb     la.Vector                 // current states of the two members
	Ba, Bb     la.Vector                 // right-hand-side slices of the two members
	PutAA      func(i, j int, v float64) // block of member A
	PutBB      func(i, j int, v float64) // block of member B
	PutAB      func(i, j int, v float64) // off-diagonal block, A row / B column
	PutBA      func(i, j int, v float64) // off-diagonal block, B row / A column
	Dt         float64                   // current time-step size
	OffA, OffB int                       // joint-system offsets (diagnostics only)
}

// Exchange is the collaborator contributing cross-model terms when a
// solution group has more than one member model
type Exchange interface {

	// Name returns the unique exchange name
	Name() string

	// ModelNames returns the names of the two coupled models
	ModelNames() (a, b string)

	// Assemble adds the coupling terms to the joint system
	Assemble(c *Coupling) error
}

// ModelAllocators maps model type names (e.g. "gwf") to allocators; model
// packages fill this map in their init functions
var ModelAllocators = make(map[string]func(mm *mem.Manager, dat *inp.ModelData) (Model, error))

// ExchangeAllocators maps exchange type names (e.g. "gwfgwf") to allocators
var ExchangeAllocators = make(map[string]func(dat *inp.ExchangeData) (Exchange, error))
