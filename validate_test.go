// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validPMU() *PMU {
	return &PMU{
		Name:        "test_pmu",
		MaxEncoding: 1,
		Events: []Event{{
			Name:       "EVT",
			BaseOpcode: 0x01,
			Umasks: []Umask{
				{Name: "A", Value: 0x1, GroupID: 0, Default: true},
				{Name: "B", Value: 0x2, GroupID: 0},
			},
			Modifiers: []string{"k", "u"},
		}},
		Modifiers: map[string]Modifier{
			"k": {Name: "k", Kind: ModBool, Bit: 17, Width: 1, Group: "priv"},
			"u": {Name: "u", Kind: ModBool, Bit: 16, Width: 1, Group: "priv"},
		},
		ModifierOrder: []string{"k", "u"},
		UmaskBit:      8,
		UmaskWidth:    8,
		PrivGroup:     []string{"k", "u"},
		Encode:        genericEncode,
	}
}

func TestValidatePMUAccepts(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.RegisterPMU(validPMU()))
}

func TestValidatePMURejectsDuplicateEventName(t *testing.T) {
	pmu := validPMU()
	pmu.Events = append(pmu.Events, Event{Name: "EVT", BaseOpcode: 0x02})
	r := newRegistry()
	err := r.RegisterPMU(pmu)
	require.Error(t, err)
	require.Equal(t, ERR_INVAL, CodeOf(err))
}

func TestValidatePMURejectsDuplicateUmask(t *testing.T) {
	pmu := validPMU()
	pmu.Events[0].Umasks = append(pmu.Events[0].Umasks, Umask{Name: "A", Value: 0x4, GroupID: 0})
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

func TestValidatePMURejectsMultipleDefaultsInGroup(t *testing.T) {
	pmu := validPMU()
	pmu.Events[0].Umasks[1].Default = true
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

func TestValidatePMURejectsOverlappingModifierBits(t *testing.T) {
	pmu := validPMU()
	pmu.Modifiers["u"] = Modifier{Name: "u", Kind: ModBool, Bit: 17, Width: 1, Group: "priv"}
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

func TestValidatePMURejectsModifierOverlappingUmaskField(t *testing.T) {
	pmu := validPMU()
	pmu.Modifiers["k"] = Modifier{Name: "k", Kind: ModBool, Bit: 8, Width: 1, Group: "priv"}
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

func TestValidatePMURejectsUndeclaredEventModifier(t *testing.T) {
	pmu := validPMU()
	pmu.Events[0].Modifiers = append(pmu.Events[0].Modifiers, "e")
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

func TestValidatePMURejectsModifierOrderReferencingUnknown(t *testing.T) {
	pmu := validPMU()
	pmu.ModifierOrder = append(pmu.ModifierOrder, "e")
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

func TestValidatePMURejectsUnnamedPMU(t *testing.T) {
	pmu := validPMU()
	pmu.Name = ""
	r := newRegistry()
	require.Error(t, r.RegisterPMU(pmu))
}

// A rejected PMU never pollutes a registry another PMU is registered
// into: registration failures are local to the one bad table.
func TestRejectedPMUDoesNotAffectOthers(t *testing.T) {
	r := newRegistry()

	bad := validPMU()
	bad.Name = "bad_pmu"
	bad.Events = append(bad.Events, Event{Name: "EVT", BaseOpcode: 0x02})
	require.Error(t, r.RegisterPMU(bad))

	good := validPMU()
	good.Name = "good_pmu"
	require.NoError(t, r.RegisterPMU(good))

	// validPMU leaves Detect nil, which Initialize treats as "always
	// active" regardless of host CPU identity.
	require.NoError(t, r.Initialize(CPUInfo{}))

	if _, ok := r.pmuByName("bad_pmu"); ok {
		t.Errorf("bad_pmu should not have been registered")
	}
	if _, ok := r.pmuByName("good_pmu"); !ok {
		t.Errorf("good_pmu should have registered despite bad_pmu's failure")
	}
}
