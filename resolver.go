// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import (
	"strconv"
	"strings"
)

// Resolved is the fully classified, fully defaulted selection produced
// by resolveTokens: a PMU, one of its events, the umasks chosen for it
// (in schema order, with any raw numeric umasks appended in the order
// given), and a complete value for every modifier the event accepts.
// Resolved is never retained beyond a single Encode/Format call; nothing
// in it is safe to mutate or reuse across calls.
type Resolved struct {
	PMU       *PMU
	Event     *Event
	Umasks    []Umask
	Modifiers map[string]uint64
}

func findEvent(pmu *PMU, name string) *Event {
	for i := range pmu.Events {
		if pmu.Events[i].matchesName(name) {
			return &pmu.Events[i]
		}
	}
	return nil
}

// resolveTokens runs the three-phase resolution described by the
// component design: PMU/event selection, attribute classification and
// combination, then default fill. privilegeMask is a bitwise-OR of PLM0,
// PLM1, PLM2, PLM3, PLMH; zero means "use the conventional default"
// (kernel and user both counted).
func resolveTokens(t tokenized, privilegeMask uint32) (*Resolved, error) {
	pmu, ev, err := resolveEvent(t)
	if err != nil {
		return nil, err
	}

	c := &combiner{pmu: pmu, ev: ev}
	specified := map[string]bool{}
	modVals := map[string]uint64{}

	for _, tok := range t.Attrs {
		if err := classifyAndApply(pmu, ev, tok, c, specified, modVals); err != nil {
			return nil, err
		}
	}

	c.fillGroupDefaults()

	if err := fillModifierDefaults(pmu, ev, privilegeMask, specified, modVals); err != nil {
		return nil, err
	}

	if pmu.EdgeRequiresCmask && ev.acceptsModifier("e") && ev.acceptsModifier("c") {
		if modVals["e"] == 1 && modVals["c"] == 0 {
			return nil, newError(ERR_ATTR, "edge modifier requires a nonzero counter-mask on this PMU")
		}
	}

	out := make(map[string]uint64, len(ev.Modifiers))
	for _, name := range ev.Modifiers {
		out[name] = modVals[lower(name)]
	}

	return &Resolved{PMU: pmu, Event: ev, Umasks: c.result(), Modifiers: out}, nil
}

func resolveEvent(t tokenized) (*PMU, *Event, error) {
	if t.PMU != "" {
		pmu, ok := global.pmuByName(t.PMU)
		if !ok {
			return nil, nil, newError(ERR_NOTFOUND, "pmu %q not found or not active", t.PMU)
		}
		ev := findEvent(pmu, t.Event)
		if ev == nil {
			return nil, nil, newError(ERR_NOTFOUND, "event %q not found on pmu %q", t.Event, t.PMU)
		}
		return pmu, ev, nil
	}
	for _, pmu := range global.activePMUs() {
		if ev := findEvent(pmu, t.Event); ev != nil {
			return pmu, ev, nil
		}
	}
	return nil, nil, newError(ERR_NOTFOUND, "event %q not found in any active pmu", t.Event)
}

func classifyAndApply(pmu *PMU, ev *Event, tok attrToken, c *combiner, specified map[string]bool, modVals map[string]uint64) error {
	// 1. Named umask: barewords only, umask wins over a same-spelled
	// modifier if both exist (disjoint namespaces in the common case).
	if !tok.HasValue {
		if u, ok := ev.umask(tok.Name); ok {
			return c.add(*u)
		}
	}

	// 2. Modifier, bareword (implicit value 1) or "name=value".
	if m, ok := pmu.modifier(tok.Name); ok && ev.acceptsModifier(m.Name) {
		val := uint64(1)
		if tok.HasValue {
			v, err := parseUint(tok.ValueStr)
			if err != nil {
				return newError(ERR_ATTR_VAL, "attribute %s: malformed value %q", tok.Name, tok.ValueStr)
			}
			val = v
		}
		key := lower(m.Name)
		if specified[key] {
			if modVals[key] != val {
				return newError(ERR_ATTR_SET, "attribute %s already set to a different value", tok.Name)
			}
			return nil
		}
		if val > m.max() {
			return newError(ERR_ATTR_VAL, "attribute %s: value %d exceeds its %d-bit field", tok.Name, val, m.Width)
		}
		specified[key] = true
		modVals[key] = val
		return nil
	}

	// 3. Raw numeric umask ("0x.."), only if the event permits it.
	if !tok.HasValue && ev.Flags&FlagRawUmask != 0 {
		if v, ok := parseHexLiteral(tok.Name); ok {
			width := pmu.RawUmaskWidth
			if width == 0 {
				width = pmu.UmaskWidth
			}
			if width > 0 && v > (uint64(1)<<uint(width))-1 {
				return newError(ERR_ATTR, "raw umask %q does not fit this pmu's %d-bit umask field", tok.Name, width)
			}
			return c.add(Umask{Name: tok.Name, Value: v, GroupID: rawUmaskGroup, Combine: true})
		}
	}

	return newError(ERR_ATTR, "unknown attribute %q", tok.Name)
}

// rawUmaskGroup is a sentinel group id reserved for synthetic raw
// numeric umasks; it never collides with a table-declared group because
// table groups are assigned non-negative ids starting at 0.
const rawUmaskGroup = -1

// combiner accumulates the umasks selected across the attribute tokens
// of one resolution, applying the exclusivity/combinability rules as
// each new umask arrives.
type combiner struct {
	pmu        *PMU
	ev         *Event
	chosen     map[string]bool
	groupOwner map[int]string
	rawOrder   []Umask
	anyChosen  bool
	anyExcl    bool
}

func (c *combiner) add(u Umask) error {
	if c.chosen == nil {
		c.chosen = map[string]bool{}
		c.groupOwner = map[int]string{}
	}
	key := lower(u.Name)
	if c.chosen[key] {
		return nil // repeating the same umask is idempotent
	}
	if (u.Excl || c.anyExcl) && c.anyChosen {
		return newError(ERR_FEATCOMB, "umask %q cannot be combined with another umask", u.Name)
	}
	if owner, ok := c.groupOwner[u.GroupID]; ok && !u.Combine {
		return newError(ERR_FEATCOMB, "umask %q conflicts with %q in the same group", u.Name, owner)
	}
	c.chosen[key] = true
	c.groupOwner[u.GroupID] = u.Name
	c.anyChosen = true
	if u.Excl {
		c.anyExcl = true
	}
	if u.GroupID == rawUmaskGroup {
		c.rawOrder = append(c.rawOrder, u)
	}
	return nil
}

// fillGroupDefaults inserts the declared default member of every umask
// group the caller never touched.
func (c *combiner) fillGroupDefaults() {
	seen := map[int]bool{}
	for _, u := range c.ev.Umasks {
		if seen[u.GroupID] {
			continue
		}
		seen[u.GroupID] = true
		if c.groupOwner != nil {
			if _, touched := c.groupOwner[u.GroupID]; touched {
				continue
			}
		}
		for _, cand := range c.ev.Umasks {
			if cand.GroupID == u.GroupID && cand.Default {
				c.add(cand) //nolint:errcheck // table-declared defaults are always internally valid
				break
			}
		}
	}
}

func (c *combiner) result() []Umask {
	var out []Umask
	for _, u := range c.ev.Umasks {
		if c.chosen != nil && c.chosen[lower(u.Name)] {
			out = append(out, u)
		}
	}
	out = append(out, c.rawOrder...)
	return out
}

// fillModifierDefaults fills in every modifier the event accepts but the
// caller never specified. Modifiers in pmu.PrivGroup default from the
// privilege mask, but only when the caller touched none of them: writing
// any one privilege modifier zeroes the rest of the group, so "u" alone
// means user-only rather than user-plus-the-usual-kernel. Everything
// outside the group takes the modifier's own Default.
func fillModifierDefaults(pmu *PMU, ev *Event, privilegeMask uint32, specified map[string]bool, modVals map[string]uint64) error {
	touchedPriv := false
	for _, n := range pmu.PrivGroup {
		if specified[lower(n)] {
			touchedPriv = true
			break
		}
	}
	effMask := privilegeMask
	if effMask == 0 {
		effMask = PLM0 | PLM3
	}
	kDefault := uint64(0)
	if effMask&PLM0 != 0 {
		kDefault = 1
	}
	uDefault := uint64(0)
	if effMask&PLM3 != 0 {
		uDefault = 1
	}
	hDefault := uint64(0)
	if effMask&PLMH != 0 {
		hDefault = 1
	}

	for _, name := range ev.Modifiers {
		key := lower(name)
		if specified[key] {
			continue
		}
		if pmu.inPrivGroup(name) {
			var def uint64
			if !touchedPriv {
				switch key {
				case "k", "sys":
					def = kDefault
				case "u":
					def = uDefault
				case "h":
					def = hDefault
				}
			}
			modVals[key] = def
			continue
		}
		m, ok := pmu.modifier(name)
		if !ok {
			return newError(ERR_INVAL, "event %q declares unknown modifier %q", ev.Name, name)
		}
		modVals[key] = m.Default
	}
	return nil
}

func parseUint(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseHexLiteral(s string) (uint64, bool) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return 0, false
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
