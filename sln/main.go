// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sln

import (
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/mem"
)

// Main holds all data for one simulation run: the definition, the variable
// registry, the solution groups and the summary being built
type Main struct {
	Sim     *inp.Simulation // simulation definition
	Mm      *mem.Manager    // variable registry (injected everywhere)
	Groups  []*Group        // solution groups, declaration order
	Summary *Summary        // run report
	Verbose bool            // show messages
	Time    float64         // current simulation time
}

// NewMain reads the simulation definition and allocates models, exchanges,
// solution groups and their solvers.
//  Input:
//   simfilepath -- simulation (.sim, .yaml) filename including full path
//   verbose     -- show messages
func NewMain(simfilepath string, verbose bool) (o *Main) {

	// new Main object
	o = new(Main)
	o.Verbose = verbose

	// read input data
	var err error
	o.Sim, err = inp.ReadSim(simfilepath)
	if err != nil {
		chk.Panic("cannot read simulation input data:\n%v", err)
	}

	// variable registry
	o.Mm = mem.NewManager()

	// allocate models
	pool := make(map[string]Model)
	for _, dat := range o.Sim.Models {
		alloc, ok := ModelAllocators[dat.Type]
		if !ok {
			chk.Panic("cannot find model type named %q", dat.Type)
		}
		m, err := alloc(o.Mm, dat)
		if err != nil {
			chk.Panic("cannot allocate model %q:\n%v", dat.Name, err)
		}
		pool[dat.Name] = m
	}

	// allocate solution groups
	for _, gdat := range o.Sim.Groups {
		g, err := NewGroup(o.Mm, gdat, o.Sim, pool)
		if err != nil {
			chk.Panic("cannot allocate solution group %q:\n%v", gdat.Name, err)
		}
		o.Groups = append(o.Groups, g)
	}

	// summary
	o.Summary = &Summary{Dirout: o.Sim.DirOut, Fnkey: o.Sim.Key, EncType: o.Sim.EncType}

	// message
	if o.Verbose {
		io.Pf("> simulation file read: %s\n", simfilepath)
		io.Pf("> %d model(s), %d solution group(s)\n", len(o.Sim.Models), len(o.Groups))
	}
	return
}

// Run drives the temporal loop: expand every stress period into time steps,
// solve all solution groups once per step in declaration order and build the
// run report. A non-converged step is recorded and the run proceeds, unless
// StopOnFail aborts it; either way the summary is complete and saved, and
// the returned error reflects any non-converged step.
func (o *Main) Run() (err error) {

	// benchmarking
	cputime := time.Now()
	defer func() {
		if o.Verbose {
			io.Pf("\nfinal time = %v\n", o.Time)
			io.Pfblue2("cpu time   = %v\n", time.Now().Sub(cputime))
		}
	}()

	// time loop
	stop := false
	for iper, p := range o.Sim.Periods {
		for istep, dt := range StepSizes(p) {

			// time update
			o.Time += dt
			if o.Verbose {
				io.Pfyel("\nperiod %d  step %d  t = %g  dt = %g\n", iper, istep, o.Time, dt)
			}

			// solve all groups, declaration order
			stepFailed := false
			for _, g := range o.Groups {
				outer, status, gerr := g.SolveStep(dt, o.Verbose)

				// record; the history slice is reused by the solver
				iters := make([]IterRecord, len(g.Nl.Hist))
				copy(iters, g.Nl.Hist)
				o.Summary.Add(StepRecord{
					Period: iper,
					Step:   istep,
					Time:   o.Time,
					Dt:     dt,
					Group:  g.Name,
					Outer:  outer,
					Status: status,
					Iters:  iters,
				}, g.Nl.Ncalls, g.Nl.Ninner)

				if gerr != nil {
					stepFailed = true
					if o.Verbose {
						io.Pfred("group %q failed at period %d step %d:\n%v\n", g.Name, iper, istep, gerr)
					}
					continue
				}
				if status != Converged {
					stepFailed = true
					if o.Verbose {
						io.Pfred("group %q did not converge at period %d step %d (%d outer iterations)\n", g.Name, iper, istep, outer)
					}
				}
			}

			// policy: continue past a non-converged step unless configured
			// to abort; the failure stays visible in the final report
			if stepFailed && o.Sim.Solver.StopOnFail {
				stop = true
				break
			}
		}
		if stop {
			break
		}
	}

	// end-of-run accounting and report
	o.Summary.Mem = o.Mm.Report()
	if o.Verbose {
		o.Summary.Print(o.Mm)
	}
	err = o.Summary.Save(o.Verbose)
	if err != nil {
		return
	}
	if !o.Summary.AllConverged() {
		return chk.Err("%d of %d time steps did not converge", o.Summary.StepsFailed, o.Summary.StepsTotal)
	}
	return
}

// End releases the registry storage of all solution groups
func (o *Main) End() {
	for _, g := range o.Groups {
		g.End()
	}
}
