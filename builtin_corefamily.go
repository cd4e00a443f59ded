// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// This file holds the Intel "core family" and AMD K8/Family10h PMU
// tables: PMUs whose events select a counter-control register that OR's
// a umask field (8 bits wide, 10 on Family 10h) together with a handful of single-bit modifiers and
// a counter-mask field. All of them share genericEncode; only their
// tables (bit positions, umask width, event list) differ.

func coreFamilyModifiers8() (map[string]Modifier, []string) {
	mods := map[string]Modifier{
		"k": {Name: "k", Kind: ModBool, Bit: 17, Width: 1, Group: "priv", Desc: "count while in kernel mode"},
		"u": {Name: "u", Kind: ModBool, Bit: 16, Width: 1, Group: "priv", Desc: "count while in user mode"},
		"e": {Name: "e", Kind: ModBool, Bit: 18, Width: 1, Desc: "edge detect"},
		"i": {Name: "i", Kind: ModInt, Bit: 23, Width: 1, Desc: "invert counter-mask comparison"},
		"c": {Name: "c", Kind: ModInt, Bit: 24, Width: 8, Desc: "counter-mask"},
		"t": {Name: "t", Kind: ModBool, Bit: 21, Width: 1, Desc: "count on the active thread only, not both threads of a core"},
	}
	order := []string{"k", "u", "e", "i", "c", "t"}
	return mods, order
}

const coreFamilyInherentBits = uint64(1<<20 | 1<<22)

func instRetiredEvent(withThread bool) Event {
	mods := []string{"k", "u", "e", "i", "c"}
	if withThread {
		mods = append(mods, "t")
	}
	return Event{
		Name: "INST_RETIRED", Alias: "instructions_retired",
		BaseOpcode: 0xc0,
		Umasks:     []Umask{{Name: "ANY_P", Value: 0x00, GroupID: 0, Default: true, Desc: "count all retired instructions"}},
		Modifiers:  mods,
		Desc:       "instructions retired",
	}
}

func l2LinesInEvent() Event {
	return Event{
		Name:       "L2_LINES_IN",
		BaseOpcode: 0x24,
		Umasks: []Umask{
			{Name: "SELF", Value: 0x4, GroupID: 0, Desc: "lines brought in by this core"},
			{Name: "BOTH_CORES", Value: 0x1, GroupID: 0, Desc: "lines brought in on behalf of both cores"},
			{Name: "OTHER_CORES", Value: 0x2, GroupID: 0, Desc: "lines brought in on behalf of the other core"},
			{Name: "ANY", Value: 0x7, GroupID: 1, Default: true, Desc: "any L2 line fill"},
		},
		Modifiers: []string{"k", "u", "e", "i", "c"},
		Desc:      "L2 cache lines allocated",
	}
}

func ratStallsEvent() Event {
	return Event{
		Name:       "RAT_STALLS",
		BaseOpcode: 0xd2,
		Umasks:     []Umask{{Name: "ANY", Value: 0x0f, GroupID: 0, Default: true, Desc: "any RAT stall condition"}},
		Modifiers:  []string{"k", "u", "e", "i", "c"},
		Desc:       "cycles the register alias table stalled",
	}
}

// brInstRetiredEvent models the architected "retired branch instructions"
// event. Its umask name and whether it exposes the per-thread "t" modifier
// vary by PMU generation, but the alias a caller writes in lowercase
// ("branch_instructions_retired") is the same everywhere and resolves
// case-insensitively against the long-form canonical alias below.
func brInstRetiredEvent(umaskName string, withThread bool) Event {
	mods := []string{"k", "u", "e", "i", "c"}
	if withThread {
		mods = append(mods, "t")
	}
	return Event{
		Name:       "BR_INST_RETIRED",
		Alias:      "BRANCH_INSTRUCTIONS_RETIRED",
		BaseOpcode: 0xc4,
		Umasks:     []Umask{{Name: umaskName, Value: 0x00, GroupID: 0, Default: true, Desc: "all retired branch instructions"}},
		Modifiers:  mods,
		Desc:       "branch instructions retired",
	}
}

func arithEvent() Event {
	return Event{
		Name:       "ARITH",
		BaseOpcode: 0x14,
		Umasks: []Umask{
			{Name: "CYCLES_DIV_BUSY", Value: 0x01, GroupID: 0, Desc: "cycles the divider is busy"},
		},
		Modifiers: []string{"k", "u", "e", "i", "c", "t"},
		Desc:      "arithmetic execution-unit busy cycles",
	}
}

func uopsExecutedEvent() Event {
	return Event{
		Name:       "UOPS_EXECUTED",
		BaseOpcode: 0xb1,
		Umasks: []Umask{
			{Name: "CORE_STALL_CYCLES", Value: 0x01, GroupID: 0, Desc: "cycles no uops executed by this core"},
			{Name: "CORE_ACTIVE_CYCLES", Value: 0x02, GroupID: 0, Desc: "cycles at least one uop executed by this core"},
		},
		Modifiers: []string{"k", "u", "e", "i", "c", "t"},
		Desc:      "micro-ops executed",
	}
}

func uopsIssuedEvent() Event {
	return Event{
		Name:       "UOPS_ISSUED",
		BaseOpcode: 0x0e,
		Flags:      FlagRawUmask,
		Modifiers:  []string{"k", "u", "e", "i", "c"},
		Desc:       "micro-ops issued; accepts a raw numeric umask",
	}
}

func offcoreResponse0Event() Event {
	return Event{
		Name:       "OFFCORE_RESPONSE_0",
		BaseOpcode: 0xb7 | 0x01<<8,
		Flags:      FlagSecondWordUmasks,
		Umasks: []Umask{
			{Name: "DMND_RFO", Value: 0x01, GroupID: 0, Combine: true, Desc: "demand read-for-ownership"},
			{Name: "DMND_DATA_RD", Value: 0x02, GroupID: 0, Combine: true, Desc: "demand data read"},
			{Name: "LOCAL_DRAM", Value: 0x2000, GroupID: 1, Combine: true, Desc: "response supplied by local DRAM"},
			{Name: "REMOTE_DRAM", Value: 0x4000, GroupID: 1, Combine: true, Desc: "response supplied by remote DRAM"},
		},
		Modifiers: []string{"k", "u", "e", "i", "c"},
		Desc:      "offcore response, request and response umasks OR into the second code word",
	}
}

func init() {
	mods, order := coreFamilyModifiers8()
	core := &PMU{
		Name: "core", Desc: "Intel Core2 core PMU",
		MaxEncoding:       1,
		Events:            []Event{instRetiredEvent(false), l2LinesInEvent(), ratStallsEvent(), brInstRetiredEvent("ANY", false)},
		Modifiers:         mods,
		ModifierOrder:     order,
		UmaskBit:          8,
		UmaskWidth:        8,
		InherentBits:      coreFamilyInherentBits,
		EdgeRequiresCmask: false,
		PrivGroup:         []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 6 && (c.Model == 15 || c.Model == 23)
		},
		Encode: genericEncode,
	}
	mustRegister(core)

	atomMods, atomOrder := coreFamilyModifiers8()
	atom := &PMU{
		Name: "atom", Desc: "Intel Atom core PMU",
		MaxEncoding:       1,
		Events:            []Event{instRetiredEvent(false)},
		Modifiers:         atomMods,
		ModifierOrder:     atomOrder,
		UmaskBit:          8,
		UmaskWidth:        8,
		InherentBits:      coreFamilyInherentBits,
		EdgeRequiresCmask: false,
		PrivGroup:         []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 6 && (c.Model == 28 || c.Model == 38 || c.Model == 39)
		},
		Encode: genericEncode,
	}
	mustRegister(atom)

	nhmMods, nhmOrder := coreFamilyModifiers8()
	nhm := &PMU{
		Name: "nhm", Desc: "Intel Nehalem core PMU",
		MaxEncoding:       1,
		Events:            []Event{instRetiredEvent(true), brInstRetiredEvent("ALL_BRANCHES", true), arithEvent()},
		Modifiers:         nhmMods,
		ModifierOrder:     nhmOrder,
		UmaskBit:          8,
		UmaskWidth:        8,
		InherentBits:      coreFamilyInherentBits,
		EdgeRequiresCmask: true,
		PrivGroup:         []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 6 && (c.Model == 26 || c.Model == 30 || c.Model == 31)
		},
		Encode: genericEncode,
	}
	mustRegister(nhm)

	wsmMods, wsmOrder := coreFamilyModifiers8()
	wsm := &PMU{
		Name: "wsm", Desc: "Intel Westmere core PMU",
		MaxEncoding:       2,
		Events:            []Event{instRetiredEvent(true), uopsIssuedEvent(), offcoreResponse0Event(), brInstRetiredEvent("ALL_BRANCHES", true), uopsExecutedEvent()},
		Modifiers:         wsmMods,
		ModifierOrder:     wsmOrder,
		UmaskBit:          8,
		UmaskWidth:        8,
		InherentBits:      coreFamilyInherentBits,
		EdgeRequiresCmask: true,
		PrivGroup:         []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 6 && (c.Model == 25 || c.Model == 44 || c.Model == 47)
		},
		Encode: genericEncode,
	}
	mustRegister(wsm)

	uncMods := map[string]Modifier{
		"e": {Name: "e", Kind: ModBool, Bit: 18, Width: 1, Desc: "edge detect"},
		"i": {Name: "i", Kind: ModInt, Bit: 23, Width: 1, Desc: "invert"},
		"c": {Name: "c", Kind: ModInt, Bit: 24, Width: 8, Desc: "counter-mask"},
		"o": {Name: "o", Kind: ModBool, Bit: 16, Width: 1, Desc: "enable overflow interrupt on this counter"},
	}
	wsmUnc := &PMU{
		Name: "wsm_unc", Desc: "Intel Westmere uncore PMU",
		MaxEncoding: 1,
		Events: []Event{{
			Name:       "UNC_QHL_REQUESTS",
			BaseOpcode: 0x20,
			Flags:      FlagUncore,
			Umasks: []Umask{
				{Name: "IOH_READS", Value: 0x1, GroupID: 0, Combine: true, Desc: "requests from the IOH, reads"},
				{Name: "IOH_WRITES", Value: 0x2, GroupID: 0, Combine: true, Desc: "requests from the IOH, writes"},
				{Name: "REMOTE_READS", Value: 0x4, GroupID: 0, Combine: true, Desc: "requests from a remote socket, reads"},
				{Name: "REMOTE_WRITES", Value: 0x8, GroupID: 0, Combine: true, Desc: "requests from a remote socket, writes"},
			},
			Modifiers: []string{"e", "i", "c", "o"},
			Desc:      "quickpath home logic request counts",
		}, {
			Name:       "UNC_QMC_WRITES",
			BaseOpcode: 0x2f,
			Flags:      FlagUncore,
			Umasks: []Umask{
				{Name: "FULL_ANY", Value: 0x07, GroupID: 0, Default: true, Combine: true, Desc: "full cache-line writes, any channel"},
				{Name: "FULL_CH0", Value: 0x01, GroupID: 0, Combine: true, Desc: "full cache-line writes, channel 0"},
				{Name: "FULL_CH1", Value: 0x02, GroupID: 0, Combine: true, Desc: "full cache-line writes, channel 1"},
				{Name: "PARTIAL_ANY", Value: 0x38, GroupID: 1, Default: true, Combine: true, Desc: "partial cache-line writes, any channel"},
				{Name: "PARTIAL_CH0", Value: 0x08, GroupID: 1, Combine: true, Desc: "partial cache-line writes, channel 0"},
				{Name: "PARTIAL_CH1", Value: 0x10, GroupID: 1, Combine: true, Desc: "partial cache-line writes, channel 1"},
			},
			Modifiers: []string{"e", "i", "c", "o"},
			Desc:      "quickpath memory controller write requests",
		}},
		Modifiers:         uncMods,
		ModifierOrder:     []string{"e", "i", "c", "o"},
		UmaskBit:          8,
		UmaskWidth:        8,
		InherentBits:      coreFamilyInherentBits,
		EdgeRequiresCmask: false,
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "GenuineIntel") && c.Family == 6 && (c.Model == 25 || c.Model == 44 || c.Model == 47)
		},
		Encode: genericEncode,
	}
	mustRegister(wsmUnc)

	k8Mods, k8Order := coreFamilyModifiers8()
	k8 := &PMU{
		Name: "amd64_k8_revg", Desc: "AMD64 K8 revision G core PMU",
		MaxEncoding: 1,
		Events: []Event{{
			Name:       "DISPATCHED_FPU",
			BaseOpcode: 0x00,
			Umasks: []Umask{
				{Name: "OPS_ADD", Value: 0x1, GroupID: 0, Combine: true, Desc: "add pipe ops"},
				{Name: "OPS_MULTIPLY", Value: 0x2, GroupID: 0, Combine: true, Desc: "multiply pipe ops"},
				{Name: "OPS_STORE", Value: 0x4, GroupID: 0, Combine: true, Desc: "store pipe ops"},
			},
			Modifiers: []string{"k", "u", "e", "i", "c"},
			Desc:      "dispatched FPU operations",
		}},
		Modifiers:         k8Mods,
		ModifierOrder:     k8Order,
		UmaskBit:          8,
		UmaskWidth:        8,
		InherentBits:      coreFamilyInherentBits,
		EdgeRequiresCmask: false,
		PrivGroup:         []string{"k", "u"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "AuthenticAMD") && c.Family == 15
		},
		Encode: genericEncode,
	}
	mustRegister(k8)

	fam10hMods := map[string]Modifier{
		"u": {Name: "u", Kind: ModBool, Bit: 18, Width: 1, Group: "priv", Desc: "count while in user mode"},
		"k": {Name: "k", Kind: ModBool, Bit: 19, Width: 1, Group: "priv", Desc: "count while in kernel mode"},
		"e": {Name: "e", Kind: ModBool, Bit: 20, Width: 1, Desc: "edge detect"},
		"i": {Name: "i", Kind: ModInt, Bit: 23, Width: 1, Desc: "invert"},
		"c": {Name: "c", Kind: ModInt, Bit: 24, Width: 8, Desc: "counter-mask"},
		"h": {Name: "h", Kind: ModBool, Bit: 32, Width: 1, Group: "priv", Desc: "count while in host mode"},
		"g": {Name: "g", Kind: ModBool, Bit: 33, Width: 1, Group: "priv", Desc: "count while in guest mode"},
	}
	fam10h := &PMU{
		Name: "amd64_fam10h_barcelona", Desc: "AMD64 Family 10h Barcelona core PMU",
		MaxEncoding: 1,
		Events: []Event{{
			Name:       "DISPATCHED_FPU",
			BaseOpcode: 0x00,
			Flags:      FlagRawUmask,
			Umasks: []Umask{
				{Name: "OPS_ADD", Value: 0x1, GroupID: 0, Combine: true, Desc: "add pipe ops"},
				{Name: "OPS_MULTIPLY", Value: 0x2, GroupID: 0, Combine: true, Desc: "multiply pipe ops"},
			},
			Modifiers: []string{"k", "u", "e", "i", "c", "h", "g"},
			Desc:      "dispatched FPU operations; accepts a 10-bit raw umask",
		}, {
			Name:       "L1_DTLB_MISS_AND_L2_DTLB_HIT",
			BaseOpcode: 0x45,
			Flags:      FlagRawUmask,
			Umasks: []Umask{
				{Name: "4K_L2_TLB_HIT", Value: 0x01, GroupID: 0, Combine: true, Desc: "4 KB page, L2 DTLB hit"},
				{Name: "2M_L2_TLB_HIT", Value: 0x02, GroupID: 0, Combine: true, Desc: "2 MB page, L2 DTLB hit"},
				{Name: "1G_L2_TLB_HIT", Value: 0x04, GroupID: 0, Combine: true, Desc: "1 GB page, L2 DTLB hit"},
			},
			Modifiers: []string{"k", "u", "e", "i", "c", "h", "g"},
			Desc:      "L1 DTLB miss that hit in the L2 DTLB",
		}},
		Modifiers:         fam10hMods,
		ModifierOrder:     []string{"k", "u", "e", "i", "c", "h", "g"},
		UmaskBit:          8,
		UmaskWidth:        10,
		InherentBits:      uint64(1) << 22,
		EdgeRequiresCmask: false,
		PrivGroup:         []string{"k", "u", "h", "g"},
		Detect: func(c CPUInfo) bool {
			return ciEqual(c.Vendor, "AuthenticAMD") && c.Family == 0x10
		},
		Encode: genericEncode,
	}
	mustRegister(fam10h)
}

func mustRegister(pmu *PMU) {
	if err := RegisterPMU(pmu); err != nil {
		panic(err)
	}
}
