// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gwf

import (
	"github.com/cpmech/gosl/chk"

	"github.com/hwreeves-USGS/gomf/inp"
	"github.com/hwreeves-USGS/gomf/sln"
)

// Link couples two flow models cell by cell through a constant conductance;
// it contributes symmetric off-diagonal terms to the joint system of the
// solution group holding both models
type Link struct {
	name   string
	ma, mb string
	cond   float64
	ca, cb []int
}

// NewLink builds a cell-to-cell coupling from its definition
func NewLink(dat *inp.ExchangeData) (o *Link, err error) {
	if !(dat.Cond > 0) {
		return nil, chk.Err("exchange %q: cond must be positive; %g is invalid", dat.Name, dat.Cond)
	}
	if len(dat.CellsA) == 0 {
		return nil, chk.Err("exchange %q has no linked cells", dat.Name)
	}
	o = new(Link)
	o.name = dat.Name
	o.ma, o.mb = dat.ModelA, dat.ModelB
	o.cond = dat.Cond
	o.ca, o.cb = dat.CellsA, dat.CellsB
	return
}

// Name returns the exchange name
func (o *Link) Name() string { return o.name }

// ModelNames returns the two coupled model names
func (o *Link) ModelNames() (a, b string) { return o.ma, o.mb }

// Assemble adds the conductance links
func (o *Link) Assemble(c *sln.Coupling) error {
	for k := 0; k < len(o.ca); k++ {
		a, b := o.ca[k], o.cb[k]
		if a < 0 || a >= len(c.Ha) || b < 0 || b >= len(c.Hb) {
			return chk.Err("exchange %q: linked cells (%d, %d) are outside the models", o.name, a, b)
		}
		c.PutAA(a, a, o.cond)
		c.PutBB(b, b, o.cond)
		c.PutAB(a, b, -o.cond)
		c.PutBA(b, a, -o.cond)
	}
	return nil
}
