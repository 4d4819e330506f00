// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcg

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/hwreeves-USGS/gomf/mem"
)

// Status is the outcome of one linear solve
type Status int

const (
	// Converged means the residual norm fell below the tolerance
	Converged Status = iota

	// MaxIterationsReached means the iteration cap was hit without
	// convergence; the partial solution is still usable by the caller
	MaxIterationsReached

	// Diverged means the residual norm became non-finite
	Diverged
)

func (o Status) String() string {
	switch o {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max-iterations-reached"
	case Diverged:
		return "diverged"
	}
	return "unknown"
}

// Results holds the diagnostics of one linear solve
type Results struct {
	Niter  int       // number of inner iterations performed
	Rnorm  float64   // final residual norm
	Status Status    // outcome
	Trace  []float64 // residual norm per iteration, when tracing is on
}

// Solver is a preconditioned conjugate-gradient solver for symmetric
// positive-definite systems. Work vectors are registered with the variable
// registry under the given origin so that they show up in the end-of-run
// memory accounting.
type Solver struct {
	relax float64 // incomplete-factorisation relaxation factor
	norm  string  // residual norm: "inf" or "l2"
	trace bool    // keep per-iteration residual norms

	// work vectors (registry-owned)
	r la.Vector // residual
	z la.Vector // preconditioned residual
	p la.Vector // search direction
	q la.Vector // A * p

	fac *icf // factors; reused while the matrix instance is unchanged
}

// NewSolver allocates a solver for n-dimensional systems.
//  Input:
//   mm     -- variable registry for the work vectors
//   origin -- registry origin tag; e.g. "sln/group1"
//   n      -- system dimension
//   relax  -- factorisation relaxation factor; 1 gives plain IC(0)
//   norm   -- residual norm: "inf" or "l2"
//   trace  -- record per-iteration residual norms
func NewSolver(mm *mem.Manager, origin string, n int, relax float64, norm string, trace bool) (o *Solver, err error) {
	if norm != "inf" && norm != "l2" {
		return nil, chk.Err("pcg: unknown residual norm %q", norm)
	}
	if relax <= 0 || relax > 1 {
		return nil, chk.Err("pcg: relaxation factor must be within (0, 1]; %g is invalid", relax)
	}
	o = new(Solver)
	o.relax = relax
	o.norm = norm
	o.trace = trace
	names := []string{"cg_r", "cg_z", "cg_p", "cg_q"}
	vecs := make([]la.Vector, 4)
	for i, name := range names {
		vecs[i], err = mm.AllocReal(origin, name, n)
		if err != nil {
			return nil, err
		}
	}
	o.r, o.z, o.p, o.q = vecs[0], vecs[1], vecs[2], vecs[3]
	return
}

// Solve solves A * x = b. On input x holds the initial guess; on output it
// holds the solution (or the partial iterate when the cap was reached).
//  Input:
//   a        -- system matrix (symmetric positive-definite)
//   b        -- right-hand side
//   x        -- initial guess; overwritten
//   tolR     -- residual-norm tolerance
//   maxInner -- iteration cap for this call
//  Output:
//   res -- convergence diagnostics; res.Status distinguishes the outcomes
//   err -- hard failures only (dimension mismatch, factorisation breakdown)
func (o *Solver) Solve(a *Sparse, b, x la.Vector, tolR float64, maxInner int) (res Results, err error) {

	// check dimensions
	n := len(o.r)
	if a.N != n || len(b) != n || len(x) != n {
		err = chk.Err("pcg: dimension mismatch: solver has n=%d, matrix has n=%d", n, a.N)
		return
	}

	// build preconditioner; the symbolic pattern is reused while the caller
	// keeps assembling into the same matrix instance
	if o.fac == nil || o.fac.src != a {
		o.fac, err = newIcf(a)
		if err != nil {
			return
		}
	}
	err = o.fac.factorise(o.relax)
	if err != nil {
		return
	}

	// initial residual. At least one iteration is always performed even
	// when the initial norm is already below the tolerance: the caller
	// reads the state change off the updated iterate, and a skipped
	// back-substitution would report a zero change for a stale guess.
	a.Resid(o.r, b, x)
	res.Rnorm = o.resNorm(o.r)
	if o.trace {
		res.Trace = append(res.Trace, res.Rnorm)
	}
	if res.Rnorm == 0 {
		res.Status = Converged
		return
	}

	// initial search direction
	o.fac.apply(o.z, o.r)
	copy(o.p, o.z)
	rz := la.VecDot(o.r, o.z)

	// iterations
	for it := 1; it <= maxInner; it++ {
		res.Niter = it

		// step length
		a.MatVec(o.q, o.p)
		den := la.VecDot(o.p, o.q)
		if den <= 0 || math.IsNaN(den) || math.IsInf(den, 0) {
			res.Status = Diverged
			return
		}
		α := rz / den

		// update iterate and residual in place; x and r alias the inputs,
		// which rules out la.VecAdd here
		for i := 0; i < n; i++ {
			x[i] += α * o.p[i]
			o.r[i] -= α * o.q[i]
		}
		res.Rnorm = o.resNorm(o.r)
		if o.trace {
			res.Trace = append(res.Trace, res.Rnorm)
		}
		if math.IsNaN(res.Rnorm) || math.IsInf(res.Rnorm, 0) {
			res.Status = Diverged
			return
		}
		if res.Rnorm <= tolR {
			res.Status = Converged
			return
		}

		// new search direction
		o.fac.apply(o.z, o.r)
		rzNew := la.VecDot(o.r, o.z)
		β := rzNew / rz
		for i := 0; i < n; i++ {
			o.p[i] = o.z[i] + β*o.p[i]
		}
		rz = rzNew
	}
	res.Status = MaxIterationsReached
	return
}

// resNorm computes the configured residual norm
func (o *Solver) resNorm(r la.Vector) (nrm float64) {
	switch o.norm {
	case "l2":
		return math.Sqrt(la.VecDot(r, r))
	default: // "inf"
		for i := 0; i < len(r); i++ {
			if v := math.Abs(r[i]); v > nrm {
				nrm = v
			}
		}
	}
	return
}
