// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// POWER8's Monitor Mode Control Registers restrict most events to one
// of several PMC slots; SecondOpcode here carries that slot's bitmask so
// the encoder can fold it into the control word alongside the usual
// privilege and thresholding bits.

func powerEncode(pmu *PMU, sel *Resolved) ([]uint64, error) {
	code := sel.Event.BaseOpcode
	code |= sel.Event.SecondOpcode << 16 // pmc assignment mask
	if sel.Modifiers["u"] != 0 {
		code |= 1 << 0
	}
	if sel.Modifiers["k"] != 0 {
		code |= 1 << 1
	}
	if sel.Modifiers["h"] != 0 {
		code |= 1 << 2
	}
	code |= (sel.Modifiers["thresh"] & 0x3f) << 8
	return []uint64{code}, nil
}

func init() {
	// Bit mirrors the positions powerEncode itself ORs in, purely so the
	// table validator can confirm no two modifiers collide.
	mods := map[string]Modifier{
		"u":      {Name: "u", Kind: ModBool, Bit: 0, Width: 1, Group: "priv", Desc: "count in user mode"},
		"k":      {Name: "k", Kind: ModBool, Bit: 1, Width: 1, Group: "priv", Desc: "count in kernel mode"},
		"h":      {Name: "h", Kind: ModBool, Bit: 2, Width: 1, Group: "priv", Desc: "count in hypervisor mode"},
		"thresh": {Name: "thresh", Kind: ModInt, Bit: 8, Width: 6, Desc: "event threshold value, PMC-specific units"},
	}
	order := []string{"k", "u", "h", "thresh"}

	power8 := &PMU{
		Name: "power8", Desc: "IBM POWER8 core PMU",
		MaxEncoding: 1,
		Events: []Event{
			{Name: "PM_RUN_INST_CMPL", Alias: "instructions", BaseOpcode: 0x00000002, SecondOpcode: 0x3f, Modifiers: []string{"k", "u", "h", "thresh"}, Desc: "instructions completed"},
			{Name: "PM_RUN_CYC", Alias: "cycles", BaseOpcode: 0x00000001, SecondOpcode: 0x3f, Modifiers: []string{"k", "u", "h", "thresh"}, Desc: "run cycles"},
			{Name: "PM_DATA_FROM_L3", BaseOpcode: 0x4c042, SecondOpcode: 0x0c, Modifiers: []string{"k", "u", "h", "thresh"}, Desc: "demand loads satisfied from L3"},
		},
		Modifiers:     mods,
		ModifierOrder: order,
		PrivGroup:     []string{"k", "u", "h"},
		Detect:        func(c CPUInfo) bool { return ciEqual(c.Arch, "ppc64le") && ciEqual(c.Vendor, "IBM") && c.Family == 8 },
		Encode:        powerEncode,
	}
	mustRegister(power8)
}
