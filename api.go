// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// Encoding is the result of resolving and encoding one event string: the
// hardware code words to program, and the canonical string form of the
// fully-defaulted selection.
type Encoding struct {
	Codes []uint64
	Fstr  string
	PMU   string
	Event string
}

// GetEventEncoding resolves name (e.g. "wsm::OFFCORE_RESPONSE_0:DMND_RFO:u=1")
// against the active PMU set, fills in every unspecified attribute, and
// encodes the result into one or more hardware code words. privilegeMask
// is a bitwise-OR of PLM0..PLM3 and PLMH; zero requests the conventional
// default (kernel and user both counted). It never opens a counter, reads
// the OS, or otherwise touches anything outside the PMU tables.
func GetEventEncoding(name string, privilegeMask uint32) (*Encoding, error) {
	if err := global.requireInit(); err != nil {
		return nil, err
	}
	t, err := tokenize(name)
	if err != nil {
		return nil, err
	}
	sel, err := resolveTokens(t, privilegeMask)
	if err != nil {
		return nil, err
	}
	codes, err := encode(sel)
	if err != nil {
		return nil, err
	}
	return &Encoding{
		Codes: codes,
		Fstr:  Format(sel),
		PMU:   sel.PMU.Name,
		Event: sel.Event.Name,
	}, nil
}

// GetEventCanonicalName resolves name and returns only its fully
// defaulted canonical string, without encoding it. It is useful for
// normalizing user-supplied event strings for display or comparison.
func GetEventCanonicalName(name string) (string, error) {
	if err := global.requireInit(); err != nil {
		return "", err
	}
	t, err := tokenize(name)
	if err != nil {
		return "", err
	}
	sel, err := resolveTokens(t, 0)
	if err != nil {
		return "", err
	}
	return Format(sel), nil
}
