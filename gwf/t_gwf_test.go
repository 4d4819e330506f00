// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gwf

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
	"github.com/hwreeves-USGS/gomf/pcg"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_flow01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow01. definition validation and initial state")

	// invalid definitions
	bad := []inp.ModelData{
		{Name: "m", Nrow: 0, Ncol: 3, Kh: 1, Top: 1},
		{Name: "m", Nrow: 1, Ncol: 3, Kh: 0, Top: 1},
		{Name: "m", Nrow: 1, Ncol: 3, Kh: 1, Top: 0, Bot: 1},
		{Name: "m", Nrow: 1, Ncol: 3, Kh: 1, Top: 1, Ss: -1},
		{Name: "m", Nrow: 1, Ncol: 3, Kh: 1, Top: 1}, // steady without chd
		{Name: "m", Nrow: 1, Ncol: 3, Kh: 1, Top: 1, Chd: []inp.PointBc{{Cell: 9, Value: 1}}},
		{Name: "m", Nrow: 1, Ncol: 3, Kh: 1, Top: 1, Ss: 1, Wells: []inp.PointBc{{Cell: -1, Value: 1}}},
	}
	for i := range bad {
		mm := mem.NewManager()
		_, err := NewFlow(mm, &bad[i])
		if err == nil {
			tst.Errorf("definition %d must be rejected", i)
			return
		}
	}

	// valid model
	mm := mem.NewManager()
	m, err := NewFlow(mm, &inp.ModelData{
		Name: "m", Nrow: 2, Ncol: 3, Kh: 1, Ss: 1e-4, H0: 5, Top: 10, Bot: 0,
		Chd: []inp.PointBc{{Cell: 4, Value: 7}},
	})
	if err != nil {
		tst.Fatalf("NewFlow failed:\n%v", err)
	}
	chk.String(tst, m.Name(), "m")
	chk.Int(tst, "ndof", m.Ndof(), 6)

	// working arrays live under the model origin
	chk.Int(tst, "registry entries", mm.Count(), 2)
	ib, err := mm.GetInt("gwf/m", "ibound")
	if err != nil {
		tst.Errorf("GetInt failed:\n%v", err)
		return
	}
	chk.Ints(tst, "ibound", ib, []int{1, 1, 1, 1, -1, 1})

	// initial state: uniform head, specified heads win
	h := la.NewVector(6)
	err = m.InitState(h)
	if err != nil {
		tst.Errorf("InitState failed:\n%v", err)
		return
	}
	chk.Array(tst, "h initial", 1e-15, h, []float64{5, 5, 5, 5, 7, 5})

	m.End()
	chk.Int(tst, "registry empty after End", mm.Count(), 0)
}

func Test_flow02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow02. saturated thickness")

	mm := mem.NewManager()
	m, err := NewFlow(mm, &inp.ModelData{
		Name: "m", Nrow: 1, Ncol: 2, Kh: 1, H0: 5, Top: 10, Bot: 0, Unconfined: true,
		Chd: []inp.PointBc{{Cell: 0, Value: 5}},
	})
	if err != nil {
		tst.Fatalf("NewFlow failed:\n%v", err)
	}
	defer m.End()

	// head within the cell: thickness follows the head
	chk.Float64(tst, "thick(4)", 1e-15, m.thick(4), 4)

	// head above the top: thickness is capped
	chk.Float64(tst, "thick(12)", 1e-15, m.thick(12), 10)

	// head at the bottom: thickness is kept positive
	chk.Float64(tst, "thick(-1)", 1e-15, m.thick(-1), minThickFrac*10)

	// confined mode ignores the head
	mc, err := NewFlow(mm, &inp.ModelData{
		Name: "mc", Nrow: 1, Ncol: 2, Kh: 1, H0: 5, Top: 10, Bot: 0,
		Chd: []inp.PointBc{{Cell: 0, Value: 5}},
	})
	if err != nil {
		tst.Fatalf("NewFlow failed:\n%v", err)
	}
	defer mc.End()
	chk.Float64(tst, "thick confined", 1e-15, mc.thick(-1), 10)
}

func Test_flow03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow03. assembled coefficients of a three-cell strip")

	mm := mem.NewManager()
	m, err := NewFlow(mm, &inp.ModelData{
		Name: "m", Nrow: 1, Ncol: 3, Kh: 2, Ss: 0.05, H0: 9, Top: 10, Bot: 0,
		Chd:   []inp.PointBc{{Cell: 0, Value: 7}},
		Wells: []inp.PointBc{{Cell: 2, Value: -3}},
	})
	if err != nil {
		tst.Fatalf("NewFlow failed:\n%v", err)
	}
	defer m.End()

	h := la.NewVector(3)
	m.InitState(h)
	dt := 0.5
	m.InitStep(h, dt)

	kb := pcg.NewBuilder(3)
	kb.Start()
	b := la.NewVector(3)
	err = m.Assemble(h, kb.Put, b, dt)
	if err != nil {
		tst.Errorf("Assemble failed:\n%v", err)
		return
	}
	a := kb.Build()

	// transmissivity 20 gives internode conductance 20; storage capacity
	// 0.5 over dt 0.5 gives 1 on the diagonal
	chk.Float64(tst, "A[0,0]", 1e-5, a.Get(0, 0), 1+20+chdPenalty)
	chk.Float64(tst, "A[1,1]", 1e-15, a.Get(1, 1), 1+40)
	chk.Float64(tst, "A[2,2]", 1e-15, a.Get(2, 2), 1+20)
	chk.Float64(tst, "A[0,1]", 1e-15, a.Get(0, 1), -20)
	chk.Float64(tst, "A[1,0]", 1e-15, a.Get(1, 0), -20)
	chk.Float64(tst, "A[1,2]", 1e-15, a.Get(1, 2), -20)
	chk.Float64(tst, "A[2,1]", 1e-15, a.Get(2, 1), -20)

	// right-hand side: storage release, well rate and the pinned head
	chk.Float64(tst, "b[0]", 1e-4, b[0], 7+chdPenalty*7)
	chk.Float64(tst, "b[1]", 1e-15, b[1], 9)
	chk.Float64(tst, "b[2]", 1e-15, b[2], 9-3)
}

func Test_link01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("link01. coupling validation")

	_, err := NewLink(&inp.ExchangeData{Name: "x", Cond: 0, CellsA: []int{0}, CellsB: []int{0}})
	if err == nil {
		tst.Errorf("non-positive conductance must be rejected")
		return
	}
	_, err = NewLink(&inp.ExchangeData{Name: "x", Cond: 1})
	if err == nil {
		tst.Errorf("empty cell list must be rejected")
		return
	}
	l, err := NewLink(&inp.ExchangeData{Name: "x", ModelA: "a", ModelB: "b", Cond: 1, CellsA: []int{2}, CellsB: []int{0}})
	if err != nil {
		tst.Fatalf("NewLink failed:\n%v", err)
	}
	na, nb := l.ModelNames()
	chk.String(tst, na, "a")
	chk.String(tst, nb, "b")
}
