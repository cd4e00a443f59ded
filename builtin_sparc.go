// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// SPARC's Niagara PMCs select one of two counters and program an event
// number per counter into a single control word; a second word carries
// the overflow/trap-enable bits. There is no umask concept, so every
// event is selected purely by name.

func sparcEncode(pmu *PMU, sel *Resolved) ([]uint64, error) {
	pcr := sel.Event.BaseOpcode
	if sel.Modifiers["u"] != 0 {
		pcr |= 1 << 0
	}
	if sel.Modifiers["sys"] != 0 {
		pcr |= 1 << 1
	}
	pic := sel.Event.SecondOpcode
	return []uint64{pcr, pic}, nil
}

func init() {
	mods := map[string]Modifier{
		"u":   {Name: "u", Kind: ModBool, Bit: 0, Width: 1, Group: "priv", Desc: "count in user mode"},
		"sys": {Name: "sys", Kind: ModBool, Bit: 1, Width: 1, Group: "priv", Desc: "count in system/supervisor mode"},
	}
	order := []string{"u", "sys"}
	events := []Event{
		{Name: "Instr_cnt", Alias: "instructions", BaseOpcode: 0x02, SecondOpcode: 0x0, Modifiers: []string{"u", "sys"}, Desc: "instructions executed"},
		{Name: "Gold_cycle_cnt", Alias: "cycles", BaseOpcode: 0x00, SecondOpcode: 0x0, Modifiers: []string{"u", "sys"}, Desc: "processor cycles"},
	}

	niagara1 := &PMU{
		Name: "niagara1", Desc: "Sun UltraSPARC T1 (Niagara) PMU",
		MaxEncoding:   2,
		Events:        events,
		Modifiers:     mods,
		ModifierOrder: order,
		PrivGroup:     []string{"u", "sys"},
		Detect:        func(c CPUInfo) bool { return ciEqual(c.Arch, "sparc64") && ciEqual(c.Vendor, "Sun") && c.Family == 1 },
		Encode:        sparcEncode,
	}
	mustRegister(niagara1)

	niagara2 := &PMU{
		Name: "niagara2", Desc: "Sun UltraSPARC T2 (Niagara2) PMU",
		MaxEncoding:   2,
		Events:        events,
		Modifiers:     mods,
		ModifierOrder: order,
		PrivGroup:     []string{"u", "sys"},
		Detect:        func(c CPUInfo) bool { return ciEqual(c.Arch, "sparc64") && ciEqual(c.Vendor, "Sun") && c.Family == 2 },
		Encode:        sparcEncode,
	}
	mustRegister(niagara2)
}
