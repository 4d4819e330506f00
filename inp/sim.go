// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the simulation definition read from a (.sim) file.
// JSON is the native encoding; files ending in .yaml or .yml are accepted as
// well and use the same lowercased keys.
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gopkg.in/yaml.v3"
)

// Data holds global simulation data
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	DirOut  string `json:"dirout"`  // directory for output; e.g. /tmp/gomf
	Encoder string `json:"encoder"` // summary encoder name: "gob" or "json"
}

// LinSolData holds data for the inner (linear) solver
type LinSolData struct {
	Name  string  `json:"name"`  // solver name; only "pcg" is available
	Relax float64 `json:"relax"` // incomplete-factorisation relaxation factor; 1 gives plain IC(0)
	Norm  string  `json:"norm"`  // residual norm: "inf" or "l2"
}

// SolverData holds the closure criteria and iteration policy of the outer
// (nonlinear) solver. Configured once per run; immutable afterwards.
type SolverData struct {
	HClose     float64 `json:"hclose"`     // max allowed state change between outer iterations
	RClose     float64 `json:"rclose"`     // max allowed residual norm of the last linear solve
	MaxOuter   int     `json:"maxouter"`   // outer iteration cap per time step
	MaxInner   int     `json:"maxinner"`   // inner iteration cap per linear solve
	NonlinMeth string  `json:"nonlinmeth"` // under-relaxation method: "none" or "simple"
	URelax     float64 `json:"urelax"`     // damping factor for the "simple" method
	StopOnFail bool    `json:"stoponfail"` // abort the run on a non-converged time step
	Stat       bool    `json:"stat"`       // keep per-iteration residual traces in the summary
}

// StressPeriod defines one entry of the time-stepping schedule. Step sizes
// within the period form a geometric sequence with ratio Mult summing to
// Length.
type StressPeriod struct {
	Length float64 `json:"length"` // period length
	Nsteps int     `json:"nsteps"` // number of time steps
	Mult   float64 `json:"mult"`   // step-size multiplier
}

// PointBc is a (cell, value) pair for cell-wise boundary terms
type PointBc struct {
	Cell  int     `json:"cell"`  // zero-based cell index
	Value float64 `json:"value"` // head for chd entries; volumetric rate for wells
}

// ModelData describes one model of the simulation
type ModelData struct {
	Name string `json:"name"` // unique model name
	Type string `json:"type"` // model type; e.g. "gwf"

	// structured-grid flow data
	Nrow       int       `json:"nrow"`       // number of rows
	Ncol       int       `json:"ncol"`       // number of columns
	Kh         float64   `json:"kh"`         // hydraulic conductivity
	Ss         float64   `json:"ss"`         // specific storage
	H0         float64   `json:"h0"`         // initial head
	Top        float64   `json:"top"`        // cell top elevation
	Bot        float64   `json:"bot"`        // cell bottom elevation
	Unconfined bool      `json:"unconfined"` // transmissivity follows current head
	Chd        []PointBc `json:"chd"`        // specified-head cells
	Wells      []PointBc `json:"wells"`      // well cells
}

// ExchangeData describes one coupling between two models
type ExchangeData struct {
	Name   string  `json:"name"`   // unique exchange name
	Type   string  `json:"type"`   // exchange type; e.g. "gwfgwf"
	ModelA string  `json:"modela"` // first member model
	ModelB string  `json:"modelb"` // second member model
	Cond   float64 `json:"cond"`   // conductance of each link
	CellsA []int   `json:"cellsa"` // linked cells in ModelA
	CellsB []int   `json:"cellsb"` // linked cells in ModelB (same length)
}

// GroupData bundles models and exchanges solved jointly every time step
type GroupData struct {
	Name      string   `json:"name"`      // unique group name
	Models    []string `json:"models"`    // member model names
	Exchanges []string `json:"exchanges"` // member exchange names
}

// Simulation holds the whole simulation definition
type Simulation struct {

	// input
	Data      Data            `json:"data"`      // global data
	LinSol    LinSolData      `json:"linsol"`    // linear solver data
	Solver    SolverData      `json:"solver"`    // nonlinear solver data
	Periods   []*StressPeriod `json:"periods"`   // time-stepping schedule
	Models    []*ModelData    `json:"models"`    // models
	Exchanges []*ExchangeData `json:"exchanges"` // couplings
	Groups    []*GroupData    `json:"groups"`    // solution groups; defaults to one group with everything

	// derived
	Key     string // filename key; e.g. mysim.sim => mysim
	DirOut  string // output directory
	EncType string // summary encoder type
}

// ReadSim reads the simulation definition, applies defaults and validates
func ReadSim(simfilepath string) (o *Simulation, err error) {

	// read file; io.ReadFile panics on failure and the callers trap panics
	b := io.ReadFile(simfilepath)

	// set default values
	o = new(Simulation)
	o.Solver.SetDefault()
	o.LinSol.SetDefault()

	// decode
	switch io.FnExt(simfilepath) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}

	// filename key and output directory
	fnkey := io.FnKey(filepath.Base(simfilepath))
	o.Key = fnkey
	o.DirOut = os.ExpandEnv(o.Data.DirOut)
	if o.DirOut == "" {
		o.DirOut = "/tmp/gomf/" + fnkey
	}

	// encoder type
	o.EncType = o.Data.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "json"
	}

	// validate
	err = o.PostProcess()
	if err != nil {
		return nil, chk.Err("invalid simulation file %q:\n%v", simfilepath, err)
	}
	return
}

// SetDefault sets default values
func (o *LinSolData) SetDefault() {
	o.Name = "pcg"
	o.Relax = 1.0
	o.Norm = "inf"
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {
	o.HClose = 1e-4
	o.RClose = 1e-3
	o.MaxOuter = 100
	o.MaxInner = 50
	o.NonlinMeth = "none"
	o.URelax = 1.0
}

// Validate checks the stress-period invariants
func (o *StressPeriod) Validate(idx int) error {
	if o.Nsteps < 1 {
		return chk.Err("period %d: nsteps must be at least 1; %d is invalid", idx, o.Nsteps)
	}
	if !(o.Length > 0) {
		return chk.Err("period %d: length must be positive; %g is invalid", idx, o.Length)
	}
	if !(o.Mult > 0) {
		return chk.Err("period %d: mult must be positive; %g is invalid", idx, o.Mult)
	}
	return nil
}

// PostProcess validates the definition and fills derived fields. A missing
// groups section becomes a single group holding every model and exchange.
func (o *Simulation) PostProcess() (err error) {

	// linear solver
	if o.LinSol.Name != "pcg" {
		return chk.Err("unknown linear solver %q", o.LinSol.Name)
	}
	if o.LinSol.Relax <= 0 || o.LinSol.Relax > 1 {
		return chk.Err("linsol relax must be within (0, 1]; %g is invalid", o.LinSol.Relax)
	}
	if o.LinSol.Norm != "inf" && o.LinSol.Norm != "l2" {
		return chk.Err("unknown residual norm %q", o.LinSol.Norm)
	}

	// nonlinear solver
	s := &o.Solver
	if !(s.HClose > 0) || !(s.RClose > 0) {
		return chk.Err("hclose and rclose must be positive; got %g and %g", s.HClose, s.RClose)
	}
	if s.MaxOuter < 1 || s.MaxInner < 1 {
		return chk.Err("maxouter and maxinner must be at least 1; got %d and %d", s.MaxOuter, s.MaxInner)
	}
	switch s.NonlinMeth {
	case "none":
	case "simple":
		if s.URelax <= 0 || s.URelax > 1 {
			return chk.Err("urelax must be within (0, 1]; %g is invalid", s.URelax)
		}
	default:
		return chk.Err("unknown under-relaxation method %q", s.NonlinMeth)
	}

	// schedule
	if len(o.Periods) < 1 {
		return chk.Err("at least one stress period is required")
	}
	for i, p := range o.Periods {
		if err = p.Validate(i); err != nil {
			return
		}
	}

	// models
	if len(o.Models) < 1 {
		return chk.Err("at least one model is required")
	}
	models := make(map[string]bool)
	for _, m := range o.Models {
		if m.Name == "" {
			return chk.Err("model with empty name")
		}
		if models[m.Name] {
			return chk.Err("duplicated model name %q", m.Name)
		}
		models[m.Name] = true
	}

	// exchanges
	exchanges := make(map[string]bool)
	for _, e := range o.Exchanges {
		if exchanges[e.Name] {
			return chk.Err("duplicated exchange name %q", e.Name)
		}
		exchanges[e.Name] = true
		if !models[e.ModelA] || !models[e.ModelB] {
			return chk.Err("exchange %q references unknown model (%q, %q)", e.Name, e.ModelA, e.ModelB)
		}
		if len(e.CellsA) != len(e.CellsB) {
			return chk.Err("exchange %q: cellsa and cellsb must have the same length", e.Name)
		}
	}

	// groups; default bundles everything
	if len(o.Groups) == 0 {
		g := &GroupData{Name: "all"}
		for _, m := range o.Models {
			g.Models = append(g.Models, m.Name)
		}
		for _, e := range o.Exchanges {
			g.Exchanges = append(g.Exchanges, e.Name)
		}
		o.Groups = []*GroupData{g}
	}
	seenm := make(map[string]bool)
	seeng := make(map[string]bool)
	for _, g := range o.Groups {
		if seeng[g.Name] {
			return chk.Err("duplicated group name %q", g.Name)
		}
		seeng[g.Name] = true
		if len(g.Models) < 1 {
			return chk.Err("group %q has no models", g.Name)
		}
		for _, name := range g.Models {
			if !models[name] {
				return chk.Err("group %q references unknown model %q", g.Name, name)
			}
			if seenm[name] {
				return chk.Err("model %q belongs to more than one group", name)
			}
			seenm[name] = true
		}
		for _, name := range g.Exchanges {
			if !exchanges[name] {
				return chk.Err("group %q references unknown exchange %q", g.Name, name)
			}
		}
	}
	return
}

// GetModel returns the model data by name; nil if absent
func (o *Simulation) GetModel(name string) *ModelData {
	for _, m := range o.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// GetExchange returns the exchange data by name; nil if absent
func (o *Simulation) GetExchange(name string) *ExchangeData {
	for _, e := range o.Exchanges {
		if e.Name == name {
			return e
		}
	}
	return nil
}
