// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcg implements the inner (linear) solver: a conjugate-gradient
// iteration preconditioned with an incomplete Cholesky factorisation. The
// matrix storage is compressed sparse row with deterministic row-sorted
// ordering so that assembly and diagnostics are reproducible.
package pcg

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Sparse is a square sparse matrix in compressed sparse row format.
// Ia has n+1 entries; row i occupies Ja[Ia[i]:Ia[i+1]], column-sorted.
type Sparse struct {
	N  int       // dimension
	Ia []int     // row pointers
	Ja []int     // column indices
	A  []float64 // values
}

// Builder accumulates (i, j, value) entries for the assembly of one linear
// system. Duplicated (i, j) pairs are summed on Build. The builder can be
// restarted and refilled every outer iteration without reallocating.
type Builder struct {
	n int
	i []int
	j []int
	v []float64
	s *Sparse // compiled matrix; reused while the pattern is unchanged
}

// NewBuilder returns a builder for an n by n system
func NewBuilder(n int) (o *Builder) {
	o = new(Builder)
	o.n = n
	return
}

// N returns the dimension of the system being assembled
func (o *Builder) N() int { return o.n }

// Start resets the builder, keeping allocated capacity
func (o *Builder) Start() {
	o.i = o.i[:0]
	o.j = o.j[:0]
	o.v = o.v[:0]
}

// Put adds value to the (i, j) entry
func (o *Builder) Put(i, j int, v float64) {
	if i < 0 || i >= o.n || j < 0 || j >= o.n {
		chk.Panic("pcg: cannot put entry (%d,%d) in %d by %d matrix", i, j, o.n, o.n)
	}
	o.i = append(o.i, i)
	o.j = append(o.j, j)
	o.v = append(o.v, v)
}

// Build compresses the accumulated entries into a Sparse matrix. Entries are
// sorted by (row, column) and duplicates are summed, so the result does not
// depend on assembly order. While the compressed pattern stays the same
// across refills, the same matrix instance is returned with its values
// updated in place, so downstream factorisations can reuse their symbolic
// step.
func (o *Builder) Build() *Sparse {
	nnz := len(o.v)
	ord := make([]int, nnz)
	for k := 0; k < nnz; k++ {
		ord[k] = k
	}
	sort.SliceStable(ord, func(a, b int) bool {
		ka, kb := ord[a], ord[b]
		if o.i[ka] != o.i[kb] {
			return o.i[ka] < o.i[kb]
		}
		return o.j[ka] < o.j[kb]
	})
	ia := make([]int, o.n+1)
	ja := make([]int, 0, nnz)
	a := make([]float64, 0, nnz)
	prevI, prevJ := -1, -1
	for _, k := range ord {
		if o.i[k] == prevI && o.j[k] == prevJ {
			a[len(a)-1] += o.v[k]
			continue
		}
		ja = append(ja, o.j[k])
		a = append(a, o.v[k])
		ia[o.i[k]+1]++
		prevI, prevJ = o.i[k], o.j[k]
	}
	for r := 0; r < o.n; r++ {
		ia[r+1] += ia[r]
	}
	if o.s != nil && eqInts(o.s.Ia, ia) && eqInts(o.s.Ja, ja) {
		copy(o.s.A, a)
		return o.s
	}
	o.s = &Sparse{N: o.n, Ia: ia, Ja: ja, A: a}
	return o.s
}

// eqInts compares two index slices
func eqInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MatVec computes y := A * x
func (o *Sparse) MatVec(y, x la.Vector) {
	for i := 0; i < o.N; i++ {
		s := 0.0
		for k := o.Ia[i]; k < o.Ia[i+1]; k++ {
			s += o.A[k] * x[o.Ja[k]]
		}
		y[i] = s
	}
}

// Resid computes r := b - A * x
func (o *Sparse) Resid(r, b, x la.Vector) {
	for i := 0; i < o.N; i++ {
		s := b[i]
		for k := o.Ia[i]; k < o.Ia[i+1]; k++ {
			s -= o.A[k] * x[o.Ja[k]]
		}
		r[i] = s
	}
}

// Get returns the (i, j) entry, or zero if outside the pattern
func (o *Sparse) Get(i, j int) float64 {
	for k := o.Ia[i]; k < o.Ia[i+1]; k++ {
		if o.Ja[k] == j {
			return o.A[k]
		}
	}
	return 0
}

// Nnz returns the number of stored entries
func (o *Sparse) Nnz() int { return len(o.Ja) }

// ToDense returns the dense representation; handy in tests only
func (o *Sparse) ToDense() (res [][]float64) {
	res = make([][]float64, o.N)
	for i := 0; i < o.N; i++ {
		res[i] = make([]float64, o.N)
		for k := o.Ia[i]; k < o.Ia[i+1]; k++ {
			res[i][o.Ja[k]] = o.A[k]
		}
	}
	return
}
