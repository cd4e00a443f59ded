// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpuprobe identifies the host CPU well enough for a PMU's Detect
// hook to decide whether it applies: vendor string, architecture family,
// and model/stepping numbers. It never inspects performance-monitoring
// capabilities itself; that judgment belongs entirely to each PMU.
package cpuprobe

import (
	"runtime"
	"strconv"

	gopsutilcpu "github.com/shirou/gopsutil/v3/cpu"
	"github.com/shoenig/go-m1cpu"
	syscpu "golang.org/x/sys/cpu"
)

// Info is the CPU identity surface a PMU Detect hook consults. It mirrors
// pfm.CPUInfo field-for-field, so a Probe result copies into one field by
// field with no translation of values.
type Info struct {
	Arch     string
	Vendor   string
	Family   int
	Model    int
	Stepping int
}

// Probe identifies the host this process is running on. It tries, in
// order: the Apple Silicon fast path (no syscalls, a handful of sysctls),
// then gopsutil's cross-platform CPU reader (Linux /proc/cpuinfo, the
// Windows and BSD equivalents), and finally a feature-flag-only fallback
// built on golang.org/x/sys/cpu for hosts where neither source is
// available (containers with a masked /proc, for instance). The fallback
// never fabricates a Family/Model; PMUs whose Detect hook requires them
// simply stay inactive.
func Probe() (Info, error) {
	if m1cpu.IsAppleSilicon() {
		return Info{Arch: "arm64", Vendor: "Apple"}, nil
	}

	stats, err := gopsutilcpu.Info()
	if err == nil && len(stats) > 0 {
		s := stats[0]
		info := Info{
			Arch:   runtime.GOARCH,
			Vendor: s.VendorID,
		}
		info.Family, _ = strconv.Atoi(s.Family)
		info.Model, _ = strconv.Atoi(s.Model)
		info.Stepping = int(s.Stepping)
		return info, nil
	}

	return Info{Arch: runtime.GOARCH, Vendor: fallbackVendor()}, err
}

// fallbackVendor reports a vendor string derived purely from compiled-in
// feature flags, used when gopsutil's platform reader fails (most
// commonly a sandboxed container with no /proc). It distinguishes Intel
// from AMD on amd64 using the feature bits x/sys/cpu already decoded at
// program start; it cannot produce a Family or Model this way, so Detect
// hooks gated on those stay inactive rather than guessing.
func fallbackVendor() string {
	switch runtime.GOARCH {
	case "amd64", "386":
		switch {
		case syscpu.X86.HasAVX512BF16, syscpu.X86.HasAVX512VNNI:
			return "GenuineIntel"
		case syscpu.X86.HasAVX512VBMI2:
			return "AuthenticAMD"
		default:
			return ""
		}
	case "arm64":
		if syscpu.ARM64.HasAES && syscpu.ARM64.HasPMULL {
			return "ARM"
		}
		return ""
	default:
		return ""
	}
}

// Force returns an Info pinned to name's conventional architecture and
// vendor, for tests and operators who want a vendor identity without the
// real hardware, much like the PFM_FORCE_PMU escape hatch at the registry
// layer. Family, Model and Stepping are left zero, so Detect hooks that
// test them do not match. Unknown names return a zero Info, which matches
// no Detect hook.
func Force(name string) Info {
	switch name {
	case "intel":
		return Info{Arch: "amd64", Vendor: "GenuineIntel"}
	case "amd":
		return Info{Arch: "amd64", Vendor: "AuthenticAMD"}
	case "apple":
		return Info{Arch: "arm64", Vendor: "Apple"}
	default:
		return Info{}
	}
}
