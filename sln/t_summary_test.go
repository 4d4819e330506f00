// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_summary01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("summary01. save and read back")

	for _, enctype := range []string{"json", "gob"} {

		sum := &Summary{Dirout: "/tmp/gomf/test-sum", Fnkey: "sum01-" + enctype, EncType: enctype}
		sum.Add(StepRecord{
			Period: 0, Step: 0, Time: 1.5, Dt: 1.5, Group: "all", Outer: 3, Status: Converged,
			Iters: []IterRecord{
				{Outer: 1, Inner: 12, MaxChange: -2.5, Loc: Loc{"left", 7}, Rnorm: 1e-4},
				{Outer: 2, Inner: 9, MaxChange: 0.3, Loc: Loc{"left", 7}, Rnorm: 5e-5},
				{Outer: 3, Inner: 4, MaxChange: 1e-5, Loc: Loc{"right", 0}, Rnorm: 1e-6},
			},
		}, 3, 25)
		sum.Add(StepRecord{
			Period: 0, Step: 1, Time: 3.0, Dt: 1.5, Group: "all", Outer: 50, Status: MaxOuterReached,
		}, 50, 400)

		chk.Int(tst, "steps total", sum.StepsTotal, 2)
		chk.Int(tst, "steps failed", sum.StepsFailed, 1)
		if sum.AllConverged() {
			tst.Errorf("a max-outer-reached record must count as a failure")
			return
		}

		err := sum.Save(chk.Verbose)
		if err != nil {
			tst.Errorf("Save failed:\n%v", err)
			return
		}

		got, err := ReadSum(sum.Dirout, sum.Fnkey, enctype)
		if err != nil {
			tst.Errorf("ReadSum failed:\n%v", err)
			return
		}
		chk.Int(tst, "read: records", len(got.Records), 2)
		chk.Int(tst, "read: ncalls", got.Ncalls, 53)
		chk.Int(tst, "read: ninner", got.Ninner, 425)
		chk.Int(tst, "read: status[1]", int(got.Records[1].Status), int(MaxOuterReached))
		chk.Int(tst, "read: iters[0]", len(got.Records[0].Iters), 3)
		chk.Float64(tst, "read: maxchange", 1e-15, got.Records[0].Iters[0].MaxChange, -2.5)
		chk.String(tst, got.Records[0].Iters[2].Loc.Model, "right")
	}
}
