// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"bytes"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/hwreeves-USGS/gomf/mem"
)

// StepRecord holds the outcome of one solution group over one time step
type StepRecord struct {
	Period int          // stress period index (0-based)
	Step   int          // time step index within the period (0-based)
	Time   float64      // simulation time at the end of the step
	Dt     float64      // step size
	Group  string       // solution group name
	Outer  int          // outer iterations performed
	Status Status       // outcome
	Iters  []IterRecord // per-outer-iteration diagnostics
}

// Summary is the run report: per-step convergence records and end-of-run
// totals, including the exact registry accounting
type Summary struct {

	// identification
	Dirout  string // directory where the summary is stored
	Fnkey   string // filename key of the simulation
	EncType string // encoder: "gob" or "json"

	// per-step records
	Records []StepRecord // one per (time step, group)

	// totals
	StepsTotal  int        // number of time steps times groups
	StepsFailed int        // records with status other than converged
	Ncalls      int        // calls to the linear solver
	Ninner      int        // accumulated inner iterations
	Mem         mem.Report // registry accounting at end of run
}

// Add appends one record and updates the totals
func (o *Summary) Add(rec StepRecord, ncalls, ninner int) {
	o.Records = append(o.Records, rec)
	o.StepsTotal++
	if rec.Status != Converged {
		o.StepsFailed++
	}
	o.Ncalls += ncalls
	o.Ninner += ninner
}

// AllConverged tells whether every recorded step of every group converged
func (o *Summary) AllConverged() bool {
	return o.StepsFailed == 0
}

// Print writes the convergence table and the totals
func (o *Summary) Print(mm *mem.Manager) {
	io.Pf("\n%4s%6s%14s%8s%8s  %-10s%s\n", "per", "step", "time", "group", "outer", "status", "largest change (last outer)")
	for _, r := range o.Records {
		last := IterRecord{}
		if len(r.Iters) > 0 {
			last = r.Iters[len(r.Iters)-1]
		}
		io.Pf("%4d%6d%14.6f%8s%8d  %-10s%13.6e at %s[%d]\n",
			r.Period, r.Step, r.Time, r.Group, r.Outer, r.Status, last.MaxChange, last.Loc.Model, last.Loc.Cell)
	}
	io.Pf("\ncalls to linear solver   = %d\n", o.Ncalls)
	io.Pf("total inner iterations   = %d\n", o.Ninner)
	io.Pf("time steps not converged = %d of %d\n", o.StepsFailed, o.StepsTotal)
	if mm != nil {
		io.Pf("\n%s", mm.PrintSummary())
	}
}

// Save writes the summary to Dirout
func (o *Summary) Save(verbose bool) (err error) {
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.EncType)
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary:\n%v", err)
	}
	return save_file(out_sum_path(o.Dirout, o.Fnkey, o.EncType), &buf, verbose)
}

// ReadSum reads a summary back from disc
func ReadSum(dir, fnkey, enctype string) (o *Summary, err error) {
	fil, err := os.Open(out_sum_path(dir, fnkey, enctype))
	if err != nil {
		return nil, chk.Err("cannot open summary file:\n%v", err)
	}
	defer fil.Close()
	o = new(Summary)
	dec := GetDecoder(fil, enctype)
	err = dec.Decode(o)
	if err != nil {
		return nil, chk.Err("cannot decode summary:\n%v", err)
	}
	return
}
