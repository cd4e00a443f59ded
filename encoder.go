// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// genericEncode implements the shared x86-style "bitfield OR" encoding
// used by core, atom, nhm, wsm, wsm_unc, and the amd64 families: every
// modifier the event accepts is shifted into its declared Bit/Width
// within code[0], the event's inherent bits are OR'd in unconditionally,
// and the umask selection either OR's into code[0]'s umask field or, for
// FlagSecondWordUmasks events, becomes code[1] verbatim.
func genericEncode(pmu *PMU, sel *Resolved) ([]uint64, error) {
	var code0 uint64 = sel.Event.BaseOpcode
	var umaskOR uint64
	for _, u := range sel.Umasks {
		umaskOR |= u.Value
	}

	if sel.Event.Flags&FlagSecondWordUmasks == 0 && pmu.UmaskWidth > 0 {
		mask := (uint64(1) << uint(pmu.UmaskWidth)) - 1
		code0 |= (umaskOR & mask) << uint(pmu.UmaskBit)
	}

	for name, val := range sel.Modifiers {
		m, ok := pmu.modifier(name)
		if !ok {
			continue
		}
		width := m.Width
		if width <= 0 {
			width = 1
		}
		fieldMask := (uint64(1) << uint(width)) - 1
		code0 |= (val & fieldMask) << uint(m.Bit)
	}

	code0 |= pmu.InherentBits

	if sel.Event.Flags&FlagSecondWordUmasks != 0 {
		return []uint64{code0, umaskOR}, nil
	}
	return []uint64{code0}, nil
}

// encode runs the PMU's Encode hook against a resolved selection, then
// checks the result against MaxEncoding. It is the only place a code
// array is produced; everything upstream only selects umasks and
// modifiers.
func encode(sel *Resolved) ([]uint64, error) {
	if sel.PMU.Encode == nil {
		return nil, newError(ERR_INVAL, "pmu %q has no encode hook", sel.PMU.Name)
	}
	codes, err := sel.PMU.Encode(sel.PMU, sel)
	if err != nil {
		return nil, err
	}
	if sel.PMU.MaxEncoding > 0 && len(codes) > sel.PMU.MaxEncoding {
		return nil, newError(ERR_INVAL, "pmu %q produced %d code words, more than its max of %d", sel.PMU.Name, len(codes), sel.PMU.MaxEncoding)
	}
	return codes, nil
}
