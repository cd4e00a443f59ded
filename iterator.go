// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// EventInfo is the discovery-oriented view of one table entry: enough to
// list and describe an event without resolving or encoding it.
type EventInfo struct {
	Index int
	PMU   string
	Name  string
	Alias string
	Desc  string
}

// AttrKind distinguishes a umask attribute from a modifier attribute in
// GetEventAttrInfo's result.
type AttrKind int

const (
	AttrUmask AttrKind = iota
	AttrModifier
)

// AttrInfo describes one attribute (umask or modifier) an event accepts.
type AttrInfo struct {
	Name    string
	Kind    AttrKind
	Desc    string
	Default uint64
}

type flatEvent struct {
	pmu *PMU
	ev  *Event
}

// flattenEvents returns every event of every active PMU, in registration
// order, as a stable index space for GetFirstEvent/GetNextEvent. It is
// recomputed on each call: enumeration is a discovery aid, not a
// performance-sensitive path.
func flattenEvents() []flatEvent {
	var out []flatEvent
	for _, pmu := range global.activePMUs() {
		for i := range pmu.Events {
			out = append(out, flatEvent{pmu: pmu, ev: &pmu.Events[i]})
		}
	}
	return out
}

// GetFirstEvent returns the index of the first enumerable event, or -1
// if no PMU is active.
func GetFirstEvent() int {
	if len(flattenEvents()) == 0 {
		return -1
	}
	return 0
}

// GetNextEvent returns the index following idx, or -1 once enumeration
// is exhausted.
func GetNextEvent(idx int) int {
	n := len(flattenEvents())
	if idx < 0 || idx+1 >= n {
		return -1
	}
	return idx + 1
}

// GetEventInfo describes the event at idx.
func GetEventInfo(idx int) (EventInfo, error) {
	all := flattenEvents()
	if idx < 0 || idx >= len(all) {
		return EventInfo{}, newError(ERR_NOTFOUND, "no event at index %d", idx)
	}
	fe := all[idx]
	return EventInfo{
		Index: idx,
		PMU:   fe.pmu.Name,
		Name:  fe.ev.Name,
		Alias: fe.ev.Alias,
		Desc:  fe.ev.Desc,
	}, nil
}

// GetEventAttrInfo lists every umask and modifier the event at idx
// accepts, umasks first in schema order followed by modifiers in the
// PMU's declared order.
func GetEventAttrInfo(idx int) ([]AttrInfo, error) {
	all := flattenEvents()
	if idx < 0 || idx >= len(all) {
		return nil, newError(ERR_NOTFOUND, "no event at index %d", idx)
	}
	fe := all[idx]
	var out []AttrInfo
	for _, u := range fe.ev.Umasks {
		out = append(out, AttrInfo{Name: u.Name, Kind: AttrUmask, Desc: u.Desc})
	}
	for _, name := range fe.pmu.ModifierOrder {
		if !fe.ev.acceptsModifier(name) {
			continue
		}
		m := fe.pmu.Modifiers[name]
		out = append(out, AttrInfo{Name: m.Name, Kind: AttrModifier, Desc: m.Desc, Default: m.Default})
	}
	return out, nil
}

// GetPMUInfo describes a registered PMU, active or not.
func GetPMUInfo(name string) (PMUID, string, bool, error) {
	for _, pmu := range global.allPMUs() {
		if ciEqual(pmu.Name, name) {
			return pmu.ID, pmu.Desc, pmu.active, nil
		}
	}
	return 0, "", false, newError(ERR_NOTFOUND, "pmu %q not registered", name)
}
