// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import (
	"reflect"
	"testing"
)

// TestLiteralScenarios pins known-good encodings and failure codes for a
// spread of PMUs and attribute shapes, end to end through
// GetEventEncoding exactly as an external caller would call it.
func TestLiteralScenarios(t *testing.T) {
	tests := []struct {
		name  string
		codes []uint64
		ret   Code
	}{
		{"core::INST_RETIRED:ANY_P", []uint64{0x5300c0}, SUCCESS},
		{"core::INST_RETIRED:ANY_P:u:u", []uint64{0x5100c0}, SUCCESS},
		{"core::INST_RETIRED:ANY_P:u=0:k=1:u=1", nil, ERR_ATTR_SET},
		{"core::INST_RETIRED:ANY_P:c=320", nil, ERR_ATTR_VAL},
		{"core::L2_LINES_IN:SELF:BOTH_CORES", nil, ERR_FEATCOMB},
		{"nhm::INST_RETIRED:ANY_P:e", nil, ERR_ATTR},
		{"atom::INST_RETIRED:ANY_P:e", []uint64{0x5700c0}, SUCCESS},
		{"wsm::offcore_response_0:DMND_RFO:DMND_DATA_RD:LOCAL_DRAM:REMOTE_DRAM", []uint64{0x5301b7, 0x6003}, SUCCESS},
		{"core::RAT_STALLS:ANY:u:c=1,cycles", []uint64{0x1510fd2}, SUCCESS},
		{"netburst::global_power_events:RUNNING:cmpl:thr=32:u", nil, ERR_ATTR_VAL},
	}

	for _, tc := range tests {
		enc, err := GetEventEncoding(tc.name, 0)
		gotRet := CodeOf(err)
		if gotRet != tc.ret {
			t.Errorf("%s: ret = %s, want %s (err=%v)", tc.name, StrError(gotRet), StrError(tc.ret), err)
			continue
		}
		if tc.ret != SUCCESS {
			continue
		}
		if !reflect.DeepEqual(enc.Codes, tc.codes) {
			t.Errorf("%s: codes = %#x, want %#x", tc.name, enc.Codes, tc.codes)
		}
	}
}

func TestCanonicalStringAssertion(t *testing.T) {
	const want = "core::L2_LINES_IN:SELF:ANY:k=1:u=1:e=0:i=0:c=0"
	fstr, err := GetEventCanonicalName("core::L2_LINES_IN:SELF")
	if err != nil {
		t.Fatalf("GetEventCanonicalName: %v", err)
	}
	if fstr != want {
		t.Errorf("got %q, want %q", fstr, want)
	}
}

// TestRoundTrip checks that resolve(format(resolve(s))) reproduces the
// same intermediate record as resolve(s).
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"core::INST_RETIRED:ANY_P",
		"core::L2_LINES_IN:SELF",
		"wsm::offcore_response_0:DMND_RFO:DMND_DATA_RD:LOCAL_DRAM:REMOTE_DRAM",
		"nhm::ARITH:CYCLES_DIV_BUSY:k=1:u=1:e=1:i=1:c=1:t=0",
		"wsm_unc::UNC_QMC_WRITES:FULL_CH0",
		"amd64_fam10h_barcelona::DISPATCHED_FPU:0x2ff",
	}
	for _, in := range inputs {
		tok1, err := tokenize(in)
		if err != nil {
			t.Fatalf("tokenize(%q): %v", in, err)
		}
		r1, err := resolveTokens(tok1, 0)
		if err != nil {
			t.Fatalf("resolveTokens(%q): %v", in, err)
		}
		fstr := Format(r1)

		tok2, err := tokenize(fstr)
		if err != nil {
			t.Fatalf("tokenize(format(%q))=%q: %v", in, fstr, err)
		}
		r2, err := resolveTokens(tok2, 0)
		if err != nil {
			t.Fatalf("resolveTokens(format(%q))=%q: %v", in, fstr, err)
		}

		if r1.PMU != r2.PMU || r1.Event != r2.Event {
			t.Errorf("%q: round-trip PMU/event mismatch: %v/%v vs %v/%v", in, r1.PMU.Name, r1.Event.Name, r2.PMU.Name, r2.Event.Name)
		}
		if !reflect.DeepEqual(r1.Modifiers, r2.Modifiers) {
			t.Errorf("%q: round-trip modifiers mismatch: %v vs %v", in, r1.Modifiers, r2.Modifiers)
		}
		if !reflect.DeepEqual(r1.Umasks, r2.Umasks) {
			t.Errorf("%q: round-trip umasks mismatch: %v vs %v", in, r1.Umasks, r2.Umasks)
		}
	}
}

// Repeating a modifier with the same value is idempotent; a conflicting
// value is rejected no matter how the repetitions interleave.
func TestIdempotentModifier(t *testing.T) {
	if _, err := GetEventEncoding("core::INST_RETIRED:ANY_P:k=1:k=1:k=1", 0); err != nil {
		t.Errorf("repeating k=1 should succeed, got %v", err)
	}
	if _, err := GetEventEncoding("core::INST_RETIRED:ANY_P:k=1:k=0", 0); CodeOf(err) != ERR_ATTR_SET {
		t.Errorf("conflicting k values should be ERR_ATTR_SET, got %v", err)
	}
}

// Leaving a umask group untouched and naming its default explicitly must
// encode identically.
func TestDefaultInjection(t *testing.T) {
	implicit, err := GetEventEncoding("core::L2_LINES_IN", 0)
	if err != nil {
		t.Fatalf("implicit default: %v", err)
	}
	explicit, err := GetEventEncoding("core::L2_LINES_IN:ANY", 0)
	if err != nil {
		t.Fatalf("explicit default: %v", err)
	}
	if !reflect.DeepEqual(implicit.Codes, explicit.Codes) {
		t.Errorf("default injection mismatch: implicit=%#x explicit=%#x", implicit.Codes, explicit.Codes)
	}
}

// Umasks from different groups OR together in the encoded umask field.
func TestDisjointGroupOR(t *testing.T) {
	enc, err := GetEventEncoding("wsm_unc::UNC_QMC_WRITES:FULL_CH0:PARTIAL_CH1", 0)
	if err != nil {
		t.Fatalf("GetEventEncoding: %v", err)
	}
	const wantUmaskField = (0x01 | 0x10) << 8
	if enc.Codes[0]&0xff00 != wantUmaskField {
		t.Errorf("umask field = %#x, want %#x", enc.Codes[0]&0xff00, wantUmaskField)
	}
}

func TestRawUmaskWidthPerPMU(t *testing.T) {
	// amd64_k8_revg's DISPATCHED_FPU doesn't declare FlagRawUmask at all,
	// so a bare hex token is just an unknown attribute there.
	if _, err := GetEventEncoding("amd64_k8_revg::DISPATCHED_FPU:0x4ff", 0); CodeOf(err) != ERR_ATTR {
		t.Errorf("expected ERR_ATTR (unknown attribute), got %v", err)
	}

	// amd64_fam10h_barcelona declares a 10-bit raw umask field: 0x2ff fits,
	// 0x7ff (11 bits) doesn't.
	if _, err := GetEventEncoding("amd64_fam10h_barcelona::DISPATCHED_FPU:0x2ff", 0); err != nil {
		t.Errorf("0x2ff should fit a 10-bit raw umask field, got %v", err)
	}
	if _, err := GetEventEncoding("amd64_fam10h_barcelona::DISPATCHED_FPU:0x7ff", 0); CodeOf(err) != ERR_ATTR {
		t.Errorf("0x7ff should overflow a 10-bit raw umask field, got %v", err)
	}
}

func TestUnknownUmaskOutOfRange(t *testing.T) {
	// From the open questions: a well-formed hex literal that's too wide
	// for the umask field is ERR_ATTR (no modifier fallback), not
	// ERR_ATTR_VAL (which is reserved for syntactically-valid-but-out-of-
	// range modifier values).
	_, err := GetEventEncoding("wsm::uops_issued:0xfff", 0)
	if CodeOf(err) != ERR_ATTR {
		t.Errorf("wsm::uops_issued:0xfff: got %v, want ERR_ATTR", err)
	}
}

func TestEdgeRequiresCmaskPolicy(t *testing.T) {
	// Core 2 and Atom allow edge-without-cmask; Nehalem/Westmere don't.
	if _, err := GetEventEncoding("core::INST_RETIRED:ANY_P:e", 0); err != nil {
		t.Errorf("core allows edge without cmask, got %v", err)
	}
	if _, err := GetEventEncoding("wsm::INST_RETIRED:ANY_P:e", 0); CodeOf(err) != ERR_ATTR {
		t.Errorf("wsm should reject edge without cmask, got %v", err)
	}
	if _, err := GetEventEncoding("wsm::INST_RETIRED:ANY_P:e:c=1", 0); err != nil {
		t.Errorf("wsm should accept edge with a nonzero cmask, got %v", err)
	}
}

func TestAliasResolution(t *testing.T) {
	core, err := GetEventEncoding("core::branch_instructions_retired", 0)
	if err != nil {
		t.Fatalf("alias lookup: %v", err)
	}
	if core.Event != "BR_INST_RETIRED" {
		t.Errorf("alias resolved to %q, want canonical name BR_INST_RETIRED", core.Event)
	}
}

func TestNoPrefixSearchesActivePMUs(t *testing.T) {
	// With no "pmu::" prefix, resolution tries every active PMU in
	// registration order and stops at the first whose table has the
	// event. RAT_STALLS exists only in the core PMU's table.
	enc, err := GetEventEncoding("RAT_STALLS:ANY", 0)
	if err != nil {
		t.Fatalf("unprefixed lookup: %v", err)
	}
	if enc.PMU != "core" {
		t.Errorf("unprefixed lookup resolved on %q, want core", enc.PMU)
	}
}

// Equal inputs always produce bit-exact equal outputs; resolution reads
// nothing but its arguments and the immutable tables.
func TestEncodingIsDeterministic(t *testing.T) {
	inputs := []string{
		"core::L2_LINES_IN:SELF",
		"wsm::offcore_response_0:DMND_RFO:LOCAL_DRAM",
		"netburst::instr_completed:NBOGUSNTAG:thr=3",
	}
	for _, in := range inputs {
		first, err := GetEventEncoding(in, 0)
		if err != nil {
			t.Fatalf("GetEventEncoding(%q): %v", in, err)
		}
		for i := 0; i < 3; i++ {
			again, err := GetEventEncoding(in, 0)
			if err != nil {
				t.Fatalf("GetEventEncoding(%q) repeat: %v", in, err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Errorf("%q: repeat call diverged: %+v vs %+v", in, first, again)
			}
		}
	}
}

func TestNotFound(t *testing.T) {
	if _, err := GetEventEncoding("bogus_pmu::X", 0); CodeOf(err) != ERR_NOTFOUND {
		t.Errorf("unknown pmu prefix: got %v, want ERR_NOTFOUND", err)
	}
	if _, err := GetEventEncoding("core::NO_SUCH_EVENT", 0); CodeOf(err) != ERR_NOTFOUND {
		t.Errorf("unknown event: got %v, want ERR_NOTFOUND", err)
	}
}
