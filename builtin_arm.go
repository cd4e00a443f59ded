// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// ARMv8 PMUv3 programs one control word per event: a 10-bit event number
// (no umask concept; the architecture defines a flat event-number space
// instead of an opcode+umask split) and a handful of single-bit filter
// flags for exception level and secure state. Unlike the x86 core family
// there is no separate invert/counter-mask field, so this PMU supplies
// its own Encode hook rather than genericEncode.

func armEncode(pmu *PMU, sel *Resolved) ([]uint64, error) {
	code := sel.Event.BaseOpcode & 0x3ff
	if sel.Modifiers["u"] != 0 {
		code |= 1 << 30 // count in EL0 (user)
	}
	if sel.Modifiers["k"] != 0 {
		code |= 1 << 31 // count in EL1 (kernel)
	}
	if sel.Modifiers["nsk"] != 0 {
		code |= 1 << 28 // count in non-secure EL1
	}
	return []uint64{code}, nil
}

func init() {
	// Bit/Width mirror the positions armEncode itself ORs in; they exist
	// so the table validator can confirm no two modifiers collide, even
	// though armEncode reads sel.Modifiers directly rather than walking
	// these fields the way genericEncode does.
	mods := map[string]Modifier{
		"u":   {Name: "u", Kind: ModBool, Bit: 30, Width: 1, Group: "priv", Desc: "count while in EL0 (user)"},
		"k":   {Name: "k", Kind: ModBool, Bit: 31, Width: 1, Group: "priv", Desc: "count while in EL1 (kernel)"},
		"nsk": {Name: "nsk", Kind: ModBool, Bit: 28, Width: 1, Desc: "count while in non-secure EL1"},
	}
	order := []string{"k", "u", "nsk"}

	events := []Event{
		{Name: "SW_INCR", BaseOpcode: 0x00, Modifiers: []string{"k", "u", "nsk"}, Desc: "instruction architecturally executed, software increment"},
		{Name: "INST_RETIRED", Alias: "instructions_retired", BaseOpcode: 0x08, Modifiers: []string{"k", "u", "nsk"}, Desc: "instruction architecturally executed"},
		{Name: "CPU_CYCLES", Alias: "cycles", BaseOpcode: 0x11, Modifiers: []string{"k", "u", "nsk"}, Desc: "cycle"},
		{Name: "L1D_CACHE_REFILL", BaseOpcode: 0x03, Modifiers: []string{"k", "u", "nsk"}, Desc: "level 1 data cache refill"},
		{Name: "BR_MIS_PRED", Alias: "branch_misses_retired", BaseOpcode: 0x10, Modifiers: []string{"k", "u", "nsk"}, Desc: "mispredicted or not predicted branch speculatively executed"},
	}

	cortexA57 := &PMU{
		Name: "arm_cortex_a57", Desc: "ARM Cortex-A57 PMUv3",
		MaxEncoding:   1,
		Events:        events,
		Modifiers:     mods,
		ModifierOrder: order,
		PrivGroup:     []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Arch, "arm64") && ciEqual(c.Vendor, "ARM")
		},
		Encode: armEncode,
	}
	mustRegister(cortexA57)
}
