// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import (
	"strconv"
	"strings"
)

// Format renders a resolved selection back into its canonical string
// form: "pmu::event:umask[:umask...]:mod=val[:mod=val...]". Umasks are
// printed in schema order; modifiers are printed in the PMU's declared
// order, every one of them, with its resolved value (including any
// value the resolver supplied as a default). Re-tokenizing and
// re-resolving the output reproduces sel exactly, because every
// modifier is already explicit.
func Format(sel *Resolved) string {
	var b strings.Builder
	b.WriteString(sel.PMU.Name)
	b.WriteString("::")
	b.WriteString(sel.Event.Name)

	for _, u := range sel.Umasks {
		b.WriteByte(':')
		b.WriteString(u.Name)
	}

	for _, name := range sel.PMU.ModifierOrder {
		if !sel.Event.acceptsModifier(name) {
			continue
		}
		val, ok := sel.Modifiers[lower(name)]
		if !ok {
			continue
		}
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(val, 10))
	}

	return b.String()
}
