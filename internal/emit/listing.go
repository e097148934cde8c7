// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Listing is the printed form of a compiled Unit. Two compilations of the
// same input produce equal listings.
type Listing struct {
	Links  []string      `cbor:"1,keyasint"`
	Global []string      `cbor:"2,keyasint,omitempty"`
	Procs  []ProcListing `cbor:"3,keyasint"`
}

// ProcListing is the printed form of one procedure.
type ProcListing struct {
	Name   string   `cbor:"1,keyasint"`
	Arity  int      `cbor:"2,keyasint"`
	Locals int      `cbor:"3,keyasint"`
	Body   []string `cbor:"4,keyasint"`
	Exit   []string `cbor:"5,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("emit: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func (e *Env) listing() Listing {
	l := Listing{Links: make([]string, len(e.links))}
	for i, lk := range e.links {
		l.Links[i] = "l" + strconv.Itoa(i) + " = " + lk.desc
	}
	gw := &writer{}
	e.global.scope.Entry.list(gw)
	l.Global = gw.lines

	for _, p := range e.procs {
		body, exit := &writer{}, &writer{}
		p.scope.Entry.list(body)
		p.scope.listExit(exit)
		l.Procs = append(l.Procs, ProcListing{
			Name:   p.name,
			Arity:  p.arity,
			Locals: p.nlocal,
			Body:   body.lines,
			Exit:   exit.lines,
		})
	}
	return l
}

// Proc returns the listing of the named procedure.
func (l Listing) Proc(name string) (ProcListing, bool) {
	for _, p := range l.Procs {
		if p.Name == name {
			return p, true
		}
	}
	return ProcListing{}, false
}

// String renders the listing as text.
func (l Listing) String() string {
	var b strings.Builder
	for _, s := range l.Links {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	for _, s := range l.Global {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	for _, p := range l.Procs {
		b.WriteString(p.String())
	}
	return b.String()
}

// String renders one procedure as text.
func (p ProcListing) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "proc %s/%d locals=%d {\n", p.Name, p.Arity, p.Locals)
	for _, s := range p.Body {
		b.WriteString("  ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	if len(p.Exit) > 0 {
		b.WriteString("} exit {\n")
		for _, s := range p.Exit {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// MarshalCanonical encodes the listing as canonical CBOR.
func (l Listing) MarshalCanonical() ([]byte, error) {
	return cborEncMode.Marshal(l)
}

// UnmarshalListing decodes a listing produced by MarshalCanonical.
func UnmarshalListing(data []byte) (Listing, error) {
	var l Listing
	if err := cbor.Unmarshal(data, &l); err != nil {
		return Listing{}, fmt.Errorf("emit: unmarshal listing: %w", err)
	}
	return l, nil
}
