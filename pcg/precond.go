// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcg

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// icf holds the incomplete Cholesky factors M = L * Lᵀ ≈ A restricted to the
// lower-triangular pattern of A. The symbolic part (patterns, index maps) is
// computed once per matrix instance and reused across numeric
// refactorisations of the same matrix.
type icf struct {
	n   int
	src *Sparse // matrix whose pattern the symbolic step was taken from

	// strictly lower triangle of L, row-compressed
	lp []int     // row pointers
	lj []int     // column indices
	lv []float64 // values
	d  []float64 // diagonal of L

	// index maps into src.A for the numeric step
	am []int // lower entry -> position in src.A
	dm []int // row -> position of diagonal in src.A

	// transpose of the strictly lower part, for the backward solve
	up []int
	uj []int
	uv []float64
	tm []int // lower entry -> slot in uv
}

// newIcf performs the symbolic step: extract the lower-triangular pattern of
// A and prepare the transpose used by the backward substitution
func newIcf(a *Sparse) (o *icf, err error) {
	o = new(icf)
	o.n = a.N
	o.src = a
	o.lp = make([]int, a.N+1)
	o.dm = make([]int, a.N)
	for i := range o.dm {
		o.dm[i] = -1
	}

	// lower pattern and diagonal positions
	for i := 0; i < a.N; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			if j < i {
				o.lj = append(o.lj, j)
				o.am = append(o.am, k)
			} else if j == i {
				o.dm[i] = k
			}
		}
		o.lp[i+1] = len(o.lj)
	}
	for i := 0; i < a.N; i++ {
		if o.dm[i] < 0 {
			return nil, chk.Err("pcg: matrix has no diagonal entry at row %d", i)
		}
	}
	o.lv = make([]float64, len(o.lj))
	o.d = make([]float64, a.N)

	// transpose pattern (strictly upper, row-compressed)
	o.up = make([]int, a.N+1)
	for t := 0; t < len(o.lj); t++ {
		o.up[o.lj[t]+1]++
	}
	for i := 0; i < a.N; i++ {
		o.up[i+1] += o.up[i]
	}
	o.uj = make([]int, len(o.lj))
	o.uv = make([]float64, len(o.lj))
	o.tm = make([]int, len(o.lj))
	next := make([]int, a.N)
	copy(next, o.up[:a.N])
	for i := 0; i < a.N; i++ {
		for t := o.lp[i]; t < o.lp[i+1]; t++ {
			j := o.lj[t]
			o.uj[next[j]] = i
			o.tm[t] = next[j]
			next[j]++
		}
	}
	return
}

// factorise performs the numeric step. relax scales the off-diagonal
// contribution subtracted from each pivot: 1 recovers plain IC(0); smaller
// values push the factorisation towards the diagonal, damping the
// preconditioner for nearly indefinite systems.
func (o *icf) factorise(relax float64) (err error) {
	a := o.src
	for i := 0; i < o.n; i++ {

		// off-diagonal entries of row i
		for t := o.lp[i]; t < o.lp[i+1]; t++ {
			j := o.lj[t]
			s := a.A[o.am[t]]

			// sparse dot of rows i and j over columns < j
			ti, tj := o.lp[i], o.lp[j]
			for ti < t && tj < o.lp[j+1] {
				switch {
				case o.lj[ti] < o.lj[tj]:
					ti++
				case o.lj[ti] > o.lj[tj]:
					tj++
				default:
					s -= o.lv[ti] * o.lv[tj]
					ti++
					tj++
				}
			}
			o.lv[t] = s / o.d[j]
		}

		// pivot
		s := a.A[o.dm[i]]
		sum := 0.0
		for t := o.lp[i]; t < o.lp[i+1]; t++ {
			sum += o.lv[t] * o.lv[t]
		}
		s -= relax * sum
		if s <= 0 || math.IsNaN(s) {
			return chk.Err("pcg: incomplete factorisation broke down at row %d (pivot = %g)", i, s)
		}
		o.d[i] = math.Sqrt(s)
	}

	// mirror values into the transpose
	for t := 0; t < len(o.lv); t++ {
		o.uv[o.tm[t]] = o.lv[t]
	}
	return
}

// apply solves M * z = r with the current factors; z and r may not alias
func (o *icf) apply(z, r la.Vector) {

	// forward: L y = r
	for i := 0; i < o.n; i++ {
		s := r[i]
		for t := o.lp[i]; t < o.lp[i+1]; t++ {
			s -= o.lv[t] * z[o.lj[t]]
		}
		z[i] = s / o.d[i]
	}

	// backward: Lᵀ z = y (in place, descending rows)
	for i := o.n - 1; i >= 0; i-- {
		s := z[i]
		for t := o.up[i]; t < o.up[i+1]; t++ {
			s -= o.uv[t] * z[o.uj[t]]
		}
		z[i] = s / o.d[i]
	}
}
