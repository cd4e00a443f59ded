// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import "testing"

func TestFormatCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"core::L2_LINES_IN:SELF", "core::L2_LINES_IN:SELF:ANY:k=1:u=1:e=0:i=0:c=0"},
		{"core::INST_RETIRED:ANY_P", "core::INST_RETIRED:ANY_P:k=1:u=1:e=0:i=0:c=0"},
		{"nhm::INST_RETIRED:ANY_P:u", "nhm::INST_RETIRED:ANY_P:k=0:u=1:e=0:i=0:c=0:t=0"},
	}
	for _, tc := range tests {
		got, err := GetEventCanonicalName(tc.in)
		if err != nil {
			t.Errorf("GetEventCanonicalName(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("GetEventCanonicalName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestFormatOmitsModifiersTheEventDoesntAccept checks that Format walks
// the PMU's declared modifier order but skips any modifier the specific
// event doesn't list, rather than printing every PMU-wide modifier.
func TestFormatOmitsModifiersTheEventDoesntAccept(t *testing.T) {
	// core declares a "t" modifier that RAT_STALLS does not list.
	got, err := GetEventCanonicalName("core::RAT_STALLS:ANY")
	if err != nil {
		t.Fatalf("GetEventCanonicalName: %v", err)
	}
	want := "core::RAT_STALLS:ANY:k=1:u=1:e=0:i=0:c=0"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestFormatRawUmask checks that a raw numeric umask token round-trips
// through Format using the literal text the caller supplied.
func TestFormatRawUmask(t *testing.T) {
	got, err := GetEventCanonicalName("wsm::uops_issued:0x3")
	if err != nil {
		t.Fatalf("GetEventCanonicalName: %v", err)
	}
	want := "wsm::UOPS_ISSUED:0x3:k=1:u=1:e=0:i=0:c=0"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestFormatMultipleUmasksSchemaOrder checks that umasks from different
// combinability groups are printed in schema declaration order, not
// input order.
func TestFormatMultipleUmasksSchemaOrder(t *testing.T) {
	got, err := GetEventCanonicalName("wsm::offcore_response_0:REMOTE_DRAM:DMND_DATA_RD")
	if err != nil {
		t.Fatalf("GetEventCanonicalName: %v", err)
	}
	want := "wsm::OFFCORE_RESPONSE_0:DMND_DATA_RD:REMOTE_DRAM:k=1:u=1:e=0:i=0:c=0"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
