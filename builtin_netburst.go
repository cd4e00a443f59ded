// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// Netburst (Pentium 4) programs a counter through a pair of registers,
// an ESCR (event/umask select) and a CCCR (edge/threshold/enable). The
// two words are independent of the generic x86 core-family layout, so
// this PMU supplies its own Encode hook instead of genericEncode.

func netburstEncode(pmu *PMU, sel *Resolved) ([]uint64, error) {
	escr := sel.Event.BaseOpcode
	var umaskOR uint64
	for _, u := range sel.Umasks {
		umaskOR |= u.Value
	}
	escr |= umaskOR << 8
	if sel.Modifiers["u"] != 0 {
		escr |= 1 << 2
	}
	if sel.Modifiers["k"] != 0 {
		escr |= 1 << 3
	}

	cccr := sel.Event.SecondOpcode
	if sel.Modifiers["e"] != 0 {
		cccr |= 1 << 0
	}
	if sel.Modifiers["cmpl"] != 0 {
		cccr |= 1 << 1
	}
	cccr |= (sel.Modifiers["thr"] & 0x1f) << 2
	cccr |= 1 << 12 // CCCR enable bit

	return []uint64{escr, cccr}, nil
}

func init() {
	// Bit values here are the ESCR bit (u, k) or a CCCR bit offset by 32
	// to keep the two registers from looking like they collide to the
	// table validator; netburstEncode places them in their own word
	// directly rather than walking these fields the way genericEncode
	// does for the core family.
	mods := map[string]Modifier{
		"u":    {Name: "u", Kind: ModBool, Bit: 2, Width: 1, Group: "priv", Desc: "count while in user mode"},
		"k":    {Name: "k", Kind: ModBool, Bit: 3, Width: 1, Group: "priv", Desc: "count while in kernel mode"},
		"e":    {Name: "e", Kind: ModBool, Bit: 32, Width: 1, Desc: "edge detect"},
		"cmpl": {Name: "cmpl", Kind: ModBool, Bit: 33, Width: 1, Desc: "complement the threshold comparison"},
		"thr":  {Name: "thr", Kind: ModInt, Bit: 34, Width: 5, Desc: "event count threshold, 0-31"},
	}
	order := []string{"k", "u", "e", "cmpl", "thr"}

	events := []Event{
		{
			Name:       "global_power_events",
			BaseOpcode: 0x02, SecondOpcode: 0x0c,
			Umasks:    []Umask{{Name: "RUNNING", Value: 0x01, GroupID: 0, Default: true, Desc: "processor is not in a halted or stopped state"}},
			Modifiers: []string{"k", "u", "e", "cmpl", "thr"},
			Desc:      "processor running cycles",
		},
		{
			Name:       "instr_completed",
			BaseOpcode: 0x02, SecondOpcode: 0x04,
			Umasks: []Umask{
				{Name: "NBOGUSNTAG", Value: 0x1, GroupID: 0, Combine: true, Desc: "non-bogus, not tagged"},
				{Name: "NBOGUSTAG", Value: 0x2, GroupID: 0, Combine: true, Desc: "non-bogus, tagged"},
			},
			Modifiers: []string{"k", "u", "e", "cmpl", "thr"},
			Desc:      "instructions completed",
		},
	}

	netburst := &PMU{
		Name: "netburst", Desc: "Intel Netburst (Pentium 4) PMU",
		MaxEncoding:   2,
		Events:        events,
		Modifiers:     mods,
		ModifierOrder: order,
		PrivGroup:     []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 15
		},
		Encode: netburstEncode,
	}
	mustRegister(netburst)

	netburstP := &PMU{
		Name: "netburst_p", Desc: "Intel Netburst (Pentium 4, Prescott) PMU",
		MaxEncoding:   2,
		Events:        events,
		Modifiers:     mods,
		ModifierOrder: order,
		PrivGroup:     []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 15 && c.Model >= 3
		},
		Encode: netburstEncode,
	}
	mustRegister(netburstP)
}
