// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// ModifierKind distinguishes a boolean present/absent modifier from one
// that carries a small integer (a counter-mask or threshold).
type ModifierKind int

const (
	ModBool ModifierKind = iota
	ModInt
)

// Modifier describes one PMU-level attribute that applies across many
// events (k, u, e, i, c, t, thr, cmpl, h, g, ...). Bit and Width describe
// where the resolved value lives in the PMU's generic encoding word. A
// PMU whose Encode hook never consults them (netburst, sparc, power, arm)
// still gives each modifier a distinct Bit, because the table validator
// rejects overlapping bit ranges, and Width still bounds the values the
// resolver accepts.
type Modifier struct {
	Name    string
	Kind    ModifierKind
	Bit     int    // LSB bit position in the generic encoding word
	Width   int    // field width in bits; Bool modifiers behave as Width==1
	Default uint64 // value used when the resolver must supply one
	Group   string // "" for a standalone modifier, else its combinability group
	Desc    string
}

func (m *Modifier) max() uint64 {
	w := m.Width
	if w <= 0 {
		w = 1
	}
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// Umask is one named sub-selector of an event. Umasks sharing a GroupID
// form a combinability group: at most one may be selected unless Combine
// is true, in which case siblings OR together. Excl marks a umask that
// may never appear alongside any other umask, in its own group or not.
type Umask struct {
	Name    string
	Value   uint64
	GroupID int
	Default bool
	Excl    bool
	Combine bool
	Desc    string
}

// EventFlags are per-event bits that change how the resolver and the
// generic encoder treat an event's attributes.
type EventFlags uint32

const (
	// FlagUncore marks an event that observes uncore traffic. Neither the
	// resolver nor the encoder reads it; such an event keeps k/u/h/g out
	// simply by not listing them in its Modifiers.
	FlagUncore EventFlags = 1 << iota
	// FlagRawUmask permits a bare "0xNN" token to stand in for a named
	// umask, so long as it fits the PMU's umask field width.
	FlagRawUmask
	// FlagSecondWordUmasks routes selected umask values into code[1]
	// (OR'd together, unshifted) instead of the generic umask field of
	// code[0]. Used by multi-request encodings like offcore_response.
	FlagSecondWordUmasks
)

// Event is one resolvable symbolic name within a PMU's table. Tables are
// pure data: the resolver and encoder never special-case an event by
// name, only by the flags and umask/modifier shapes it declares.
type Event struct {
	Name string
	// Alias is an alternate accepted spelling; empty if the event has
	// only its canonical Name.
	Alias string
	// BaseOpcode seeds code[0] (event-select bits and, for encodings
	// with a fixed marker such as offcore_response, the marker byte).
	BaseOpcode uint64
	// SecondOpcode seeds code[1] for two-word encodings that are not
	// FlagSecondWordUmasks (netburst's CCCR, sparc's second word);
	// power8 instead folds it into code[0] as a PMC-slot mask.
	SecondOpcode uint64
	Umasks       []Umask
	// Modifiers lists the subset of the PMU's modifier table this event
	// accepts, in no particular order; the formatter prints them back in
	// the PMU's declared order.
	Modifiers []string
	Flags     EventFlags
	Desc      string
}

func (e *Event) matchesName(name string) bool {
	return ciEqual(e.Name, name) || (e.Alias != "" && ciEqual(e.Alias, name))
}

func (e *Event) umask(name string) (*Umask, bool) {
	for i := range e.Umasks {
		if ciEqual(e.Umasks[i].Name, name) {
			return &e.Umasks[i], true
		}
	}
	return nil, false
}

func (e *Event) acceptsModifier(name string) bool {
	for _, m := range e.Modifiers {
		if ciEqual(m, name) {
			return true
		}
	}
	return false
}

func ciEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
