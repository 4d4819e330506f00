// Copyright 2017 The Gomf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mem implements the variable registry: a name-keyed store of typed
// numeric arrays grouped by origin. All numerical components allocate their
// working storage through a Manager so that total memory usage is exact and
// centrally auditable.
package mem

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// registry misuse errors; all of them are fatal to a run
var (
	ErrDuplicateName = errors.New("mem: (origin, name) already registered")
	ErrNotFound      = errors.New("mem: (origin, name) not registered")
	ErrInvalidShape  = errors.New("mem: extent must be positive")
)

// Kind distinguishes integer from real-valued variables
type Kind int

const (
	Integer Kind = iota
	Real
)

func (o Kind) String() string {
	if o == Integer {
		return "integer"
	}
	return "real"
}

// Entry describes one registered variable
type Entry struct {
	Origin string // owning component; e.g. "gwf/left"
	Name   string // variable name; e.g. "head"
	Kind   Kind   // integer or real
	Extent int    // number of items; 1 for scalars
	Bytes  int    // memory footprint
}

// Report holds the usage accounting computed from live entries
type Report struct {
	NumInt     int // number of live integer variables
	NumReal    int // number of live real variables
	TotalBytes int // exact sum of live footprints
}

// Manager is the registry instance. It owns the storage; components hold
// (origin, name) handles and slice views, never entries of their own.
type Manager struct {
	ivars map[string][]int
	rvars map[string]la.Vector
	meta  map[string]Entry
}

// NewManager returns a new, empty registry
func NewManager() (o *Manager) {
	o = new(Manager)
	o.ivars = make(map[string][]int)
	o.rvars = make(map[string]la.Vector)
	o.meta = make(map[string]Entry)
	return
}

// key builds the process-wide unique identifier of a variable
func key(origin, name string) string {
	return origin + "/" + name
}

// AllocInt allocates an integer array with n items
func (o *Manager) AllocInt(origin, name string, n int) ([]int, error) {
	if err := o.check(origin, name, n); err != nil {
		return nil, err
	}
	k := key(origin, name)
	o.ivars[k] = make([]int, n)
	o.meta[k] = Entry{origin, name, Integer, n, n * 8}
	return o.ivars[k], nil
}

// AllocReal allocates a real-valued array with n items
func (o *Manager) AllocReal(origin, name string, n int) (la.Vector, error) {
	if err := o.check(origin, name, n); err != nil {
		return nil, err
	}
	k := key(origin, name)
	o.rvars[k] = la.NewVector(n)
	o.meta[k] = Entry{origin, name, Real, n, n * 8}
	return o.rvars[k], nil
}

// AllocIntScalar allocates an integer scalar (extent-1 array)
func (o *Manager) AllocIntScalar(origin, name string) ([]int, error) {
	return o.AllocInt(origin, name, 1)
}

// AllocRealScalar allocates a real scalar (extent-1 array)
func (o *Manager) AllocRealScalar(origin, name string) (la.Vector, error) {
	return o.AllocReal(origin, name, 1)
}

// GetInt returns the view of a registered integer array
func (o *Manager) GetInt(origin, name string) ([]int, error) {
	v, ok := o.ivars[key(origin, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, origin, name)
	}
	return v, nil
}

// GetReal returns the view of a registered real array
func (o *Manager) GetReal(origin, name string) (la.Vector, error) {
	v, ok := o.rvars[key(origin, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, origin, name)
	}
	return v, nil
}

// Release deallocates one variable. Releasing an unknown (origin, name),
// including a second release of the same entry, fails with ErrNotFound.
func (o *Manager) Release(origin, name string) error {
	k := key(origin, name)
	e, ok := o.meta[k]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, origin, name)
	}
	if e.Kind == Integer {
		delete(o.ivars, k)
	} else {
		delete(o.rvars, k)
	}
	delete(o.meta, k)
	return nil
}

// ReleaseOrigin deallocates every variable registered under origin; this is
// the teardown path of a model or solution group
func (o *Manager) ReleaseOrigin(origin string) {
	for k, e := range o.meta {
		if e.Origin == origin {
			if e.Kind == Integer {
				delete(o.ivars, k)
			} else {
				delete(o.rvars, k)
			}
			delete(o.meta, k)
		}
	}
}

// Entries returns a snapshot of live entries, sorted by (origin, name)
func (o *Manager) Entries() (res []Entry) {
	res = make([]Entry, 0, len(o.meta))
	for _, e := range o.meta {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Origin != res[j].Origin {
			return res[i].Origin < res[j].Origin
		}
		return res[i].Name < res[j].Name
	})
	return
}

// Count returns the number of live entries
func (o *Manager) Count() int {
	return len(o.meta)
}

// Report computes the exact usage accounting by summing live entries
func (o *Manager) Report() (rep Report) {
	for _, e := range o.meta {
		switch e.Kind {
		case Integer:
			rep.NumInt++
		case Real:
			rep.NumReal++
		}
		rep.TotalBytes += e.Bytes
	}
	return
}

// PrintSummary returns the memory table shown in the end-of-run report
func (o *Manager) PrintSummary() (l string) {
	l = io.Sf("%-20s%-16s%8s%10s%12s\n", "origin", "name", "kind", "extent", "bytes")
	for _, e := range o.Entries() {
		l += io.Sf("%-20s%-16s%8s%10d%12d\n", e.Origin, e.Name, e.Kind, e.Extent, e.Bytes)
	}
	rep := o.Report()
	l += io.Sf("%d integer variables, %d real variables, %d bytes total\n", rep.NumInt, rep.NumReal, rep.TotalBytes)
	return
}

// check validates an allocation request
func (o *Manager) check(origin, name string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %s/%s with extent %d", ErrInvalidShape, origin, name, n)
	}
	if _, ok := o.meta[key(origin, name)]; ok {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateName, origin, name)
	}
	return nil
}
