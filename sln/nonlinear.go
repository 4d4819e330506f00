// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
	"github.com/hwreeves-USGS/gomf/pcg"
)

// Status is the outcome of one time step of one solution group
type Status int

const (
	// Converged means both closure criteria were satisfied
	Converged Status = iota

	// MaxOuterReached means the outer cap was hit with the convergence test
	// still failing; a reported failure, not a crash
	MaxOuterReached

	// Failed means the solve attempt broke down (diverged linear solve or
	// assembly failure)
	Failed
)

func (o Status) String() string {
	switch o {
	case Converged:
		return "converged"
	case MaxOuterReached:
		return "max-outer-reached"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Loc identifies the degree of freedom with the largest state change
type Loc struct {
	Model string // model name
	Cell  int    // cell (local degree-of-freedom) index
}

// IterRecord is the per-outer-iteration diagnostic surfaced in the summary
type IterRecord struct {
	Outer     int       // outer iteration number (1-based)
	Inner     int       // inner iterations spent by the linear solve
	InnerCap  bool      // linear solve hit its iteration cap
	MaxChange float64   // signed value of the largest-magnitude state change
	Loc       Loc       // where the largest change happened
	Rnorm     float64   // linear-solve residual norm
	Trace     []float64 // inner residual trace, when statistics are on
}

// phase enumerates the states of the outer-iteration state machine
type phase int

const (
	phaseAssembling phase = iota
	phaseLinearSolving
	phaseUpdating
	phaseChecking
)

// Nonlinear runs the outer iteration of one solution group: assemble the
// joint system at the current state, solve the linearised problem, apply a
// (possibly damped) update and evaluate the dual convergence test.
type Nonlinear struct {

	// configuration (immutable after construction)
	conf inp.SolverData

	// collaborators
	sys *System
	lin *pcg.Solver

	// per-time-step state; Reset clears it
	Hist   []IterRecord // convergence history of the current time step
	Ncalls int          // calls to the linear solver
	Ninner int          // accumulated inner iterations
}

// NewNonlinear builds the outer solver of one solution group. The linear
// solver's work vectors are registered under the group's origin tag.
func NewNonlinear(mm *mem.Manager, origin string, sys *System, conf inp.SolverData, lconf inp.LinSolData) (o *Nonlinear, err error) {
	o = new(Nonlinear)
	o.conf = conf
	o.sys = sys
	o.lin, err = pcg.NewSolver(mm, origin, sys.Ndof, lconf.Relax, lconf.Norm, conf.Stat)
	if err != nil {
		return nil, err
	}
	return
}

// Reset clears the per-time-step solver state; called at the start of every
// time step
func (o *Nonlinear) Reset() {
	o.Hist = o.Hist[:0]
	o.Ncalls = 0
	o.Ninner = 0
}

// Solve runs outer iterations at the current state until convergence or the
// outer cap.
//  Input:
//   dt      -- time-step size
//   verbose -- print the per-iteration diagnostic line
//  Output:
//   outer  -- number of outer iterations performed
//   status -- Converged, MaxOuterReached or Failed
//   err    -- non-nil only on breakdowns (err implies status == Failed)
func (o *Nonlinear) Solve(dt float64, verbose bool) (outer int, status Status, err error) {

	if verbose {
		io.Pf("%6s%8s%23s  %s\n", "outer", "inner", "max change", "location")
	}

	var res pcg.Results
	var maxΔ float64
	var loc Loc

	ph := phaseAssembling
	for {
		switch ph {

		case phaseAssembling:
			outer++
			err = o.sys.Assemble(dt)
			if err != nil {
				return outer, Failed, err
			}
			ph = phaseLinearSolving

		case phaseLinearSolving:
			copy(o.sys.X, o.sys.H)
			res, err = o.lin.Solve(o.sys.A, o.sys.B, o.sys.X, o.conf.RClose, o.conf.MaxInner)
			o.Ncalls++
			o.Ninner += res.Niter
			if err != nil {
				return outer, Failed, err
			}
			if res.Status == pcg.Diverged {
				return outer, Failed, chk.Err("linear solve diverged at outer iteration %d (residual norm %g)", outer, res.Rnorm)
			}
			// an inner cap hit is not fatal: the partial solution is used
			// and the event is kept in the history
			ph = phaseUpdating

		case phaseUpdating:
			maxΔ, loc = o.update()
			rec := IterRecord{
				Outer:     outer,
				Inner:     res.Niter,
				InnerCap:  res.Status == pcg.MaxIterationsReached,
				MaxChange: maxΔ,
				Loc:       loc,
				Rnorm:     res.Rnorm,
			}
			if o.conf.Stat {
				rec.Trace = res.Trace
			}
			o.Hist = append(o.Hist, rec)
			if verbose {
				io.Pf("%6d%8d%23.15e  %s[%d]\n", outer, res.Niter, maxΔ, loc.Model, loc.Cell)
			}
			ph = phaseChecking

		case phaseChecking:
			if math.Abs(maxΔ) <= o.conf.HClose && res.Rnorm <= o.conf.RClose {
				return outer, Converged, nil
			}
			if outer == o.conf.MaxOuter {
				return outer, MaxOuterReached, nil
			}
			ph = phaseAssembling
		}
	}
}

// update computes the state change, damps it if under-relaxation is on,
// applies it through the models and locates the largest change. Ties keep
// the first hit in (model index, cell index) order, so the diagnostic is
// reproducible.
func (o *Nonlinear) update() (maxΔ float64, loc Loc) {

	// change proposed by the linear solve
	for i := 0; i < o.sys.Ndof; i++ {
		o.sys.ΔH[i] = o.sys.X[i] - o.sys.H[i]
	}

	// under-relaxation policy: "none" applies the full update
	if o.conf.NonlinMeth == "simple" {
		for i := 0; i < o.sys.Ndof; i++ {
			o.sys.ΔH[i] *= o.conf.URelax
		}
	}

	// apply and probe, model by model in declaration order
	copy(o.sys.Hold, o.sys.H)
	first := true
	for im, m := range o.sys.Models {
		h := o.sys.Slice(o.sys.H, im)
		δ := o.sys.Slice(o.sys.ΔH, im)
		m.ApplyUpdate(h, δ)
		m.Probe(δ, o.sys.Slice(o.sys.Hold, im), h)
		for i := 0; i < len(δ); i++ {
			if first || math.Abs(δ[i]) > math.Abs(maxΔ) {
				maxΔ = δ[i]
				loc = Loc{m.Name(), i}
				first = false
			}
		}
	}
	return
}
