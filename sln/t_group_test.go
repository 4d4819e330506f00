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

func Test_group01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("group01. group construction and one time step")

	sim := new(inp.Simulation)
	sim.Solver.SetDefault()
	sim.LinSol.SetDefault()

	gdat := &inp.GroupData{Name: "g1", Models: []string{"a", "b"}}
	pool := map[string]Model{
		"a": newScripted("a", 2, []float64{1.0, 0.0}),
		"b": newScripted("b", 3, nil),
	}

	mm := mem.NewManager()
	g, err := NewGroup(mm, gdat, sim, pool)
	if err != nil {
		tst.Fatalf("NewGroup failed:\n%v", err)
	}
	chk.String(tst, g.Name, "g1")
	chk.Int(tst, "ndof", g.Sys.Ndof, 5)

	// joint vectors and linear-solver work vectors live under the group
	// origin: 5 joint + 4 work vectors of 5 entries each
	chk.Int(tst, "registry entries", mm.Count(), 9)

	outer, status, err := g.SolveStep(1.0, chk.Verbose)
	if err != nil {
		tst.Errorf("SolveStep failed:\n%v", err)
		return
	}
	chk.Int(tst, "outer", outer, 2)
	chk.Int(tst, "status", int(status), int(Converged))

	// a second step resets the solver state
	outer, status, err = g.SolveStep(1.0, chk.Verbose)
	if err != nil {
		tst.Errorf("SolveStep failed:\n%v", err)
		return
	}
	chk.Int(tst, "outer (2nd step)", outer, 1)
	chk.Int(tst, "status (2nd step)", int(status), int(Converged))
	chk.Int(tst, "ncalls (2nd step)", g.Nl.Ncalls, 1)
	chk.Int(tst, "hist (2nd step)", len(g.Nl.Hist), 1)

	g.End()
	chk.Int(tst, "registry empty after End", mm.Count(), 0)
}

func Test_group02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("group02. unknown members are caught")

	sim := new(inp.Simulation)
	sim.Solver.SetDefault()
	sim.LinSol.SetDefault()

	mm := mem.NewManager()
	_, err := NewGroup(mm, &inp.GroupData{Name: "g1", Models: []string{"nope"}}, sim, map[string]Model{})
	if err == nil {
		tst.Errorf("unallocated model must fail")
		return
	}

	pool := map[string]Model{"a": newScripted("a", 1, nil)}
	_, err = NewGroup(mm, &inp.GroupData{Name: "g2", Models: []string{"a"}, Exchanges: []string{"nope"}}, sim, pool)
	if err == nil {
		tst.Errorf("unknown exchange must fail")
		return
	}
}
