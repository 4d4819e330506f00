// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
)

// pipe is a single-link conductance exchange for testing the joint-system
// offsets
type pipe struct {
	name   string
	ma, mb string
	ca, cb int
	cond   float64
}

func (o *pipe) Name() string { return o.name }

func (o *pipe) ModelNames() (a, b string) { return o.ma, o.mb }

func (o *pipe) Assemble(c *Coupling) error {
	c.PutAA(o.ca, o.ca, o.cond)
	c.PutBB(o.cb, o.cb, o.cond)
	c.PutAB(o.ca, o.cb, -o.cond)
	c.PutBA(o.cb, o.ca, -o.cond)
	return nil
}

func Test_system01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system01. joint assembly with exchange terms")

	ma := newScripted("a", 2, nil)
	mb := newScripted("b", 3, nil)
	ex := &pipe{name: "a-b", ma: "a", mb: "b", ca: 1, cb: 0, cond: 3.0}

	mm := mem.NewManager()
	sys, err := NewSystem(mm, "sln/test", []Model{ma, mb}, []Exchange{ex})
	if err != nil {
		tst.Fatalf("NewSystem failed:\n%v", err)
	}
	chk.Int(tst, "ndof", sys.Ndof, 5)
	chk.Ints(tst, "offsets", sys.Offs, []int{0, 2})

	err = sys.Assemble(1.0)
	if err != nil {
		tst.Errorf("Assemble failed:\n%v", err)
		return
	}

	// scripted models put an identity diagonal; the exchange couples the
	// joint degrees of freedom 1 (model a, cell 1) and 2 (model b, cell 0)
	chk.Float64(tst, "A[0,0]", 1e-15, sys.A.Get(0, 0), 1.0)
	chk.Float64(tst, "A[1,1]", 1e-15, sys.A.Get(1, 1), 4.0)
	chk.Float64(tst, "A[2,2]", 1e-15, sys.A.Get(2, 2), 4.0)
	chk.Float64(tst, "A[1,2]", 1e-15, sys.A.Get(1, 2), -3.0)
	chk.Float64(tst, "A[2,1]", 1e-15, sys.A.Get(2, 1), -3.0)
	chk.Float64(tst, "A[3,3]", 1e-15, sys.A.Get(3, 3), 1.0)

	// joint index to (model, cell)
	model, cell := sys.Loc(1)
	chk.String(tst, model, "a")
	chk.Int(tst, "loc(1).cell", cell, 1)
	model, cell = sys.Loc(2)
	chk.String(tst, model, "b")
	chk.Int(tst, "loc(2).cell", cell, 0)
	model, cell = sys.Loc(4)
	chk.String(tst, model, "b")
	chk.Int(tst, "loc(4).cell", cell, 2)

	sys.End()
	chk.Int(tst, "registry empty after End", mm.Count(), 0)
}

func Test_system02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system02. exchange members must belong to the group")

	ma := newScripted("a", 2, nil)
	ex := &pipe{name: "a-b", ma: "a", mb: "b", cond: 1.0}

	mm := mem.NewManager()
	_, err := NewSystem(mm, "sln/test", []Model{ma}, []Exchange{ex})
	if err == nil {
		tst.Errorf("exchange coupling an absent model must fail")
		return
	}
}

func Test_system03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system03. tied changes keep the first model in order")

	// both models demand the same change; the diagnostic must point at the
	// first model in declaration order
	deltas := []float64{2.0, 0.0}
	ma := newScripted("left", 1, deltas)
	mb := newScripted("right", 1, deltas)

	mm := mem.NewManager()
	sys, err := NewSystem(mm, "sln/test", []Model{ma, mb}, nil)
	if err != nil {
		tst.Fatalf("NewSystem failed:\n%v", err)
	}
	var conf inp.SolverData
	conf.SetDefault()
	var lconf inp.LinSolData
	lconf.SetDefault()
	nl, err := NewNonlinear(mm, "sln/test", sys, conf, lconf)
	if err != nil {
		tst.Fatalf("NewNonlinear failed:\n%v", err)
	}

	nl.Reset()
	_, status, err := nl.Solve(1.0, chk.Verbose)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.Int(tst, "status", int(status), int(Converged))
	chk.String(tst, nl.Hist[0].Loc.Model, "left")
	chk.Int(tst, "hist[0].loc.cell", nl.Hist[0].Loc.Cell, 0)
}
