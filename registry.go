// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import (
	"os"
	"sort"
	"sync"

	"github.com/pfmgo/pfmcore/cpuprobe"
)

// PLM bits describe the privilege levels a caller wants an event to
// count in. They are the same shape as the privilege mask argument to
// GetEventEncoding and feed the privilege-group defaulting rule.
const (
	PLM0 = 1 << iota // kernel / ring 0
	PLM1
	PLM2
	PLM3 // user / ring 3
	PLMH // hypervisor / host
)

// CPUInfo is the minimal CPU identity a PMU's Detect hook needs. It is
// deliberately small and contains no OS- or architecture-specific types,
// so that callers can fabricate one in tests without touching hardware.
type CPUInfo struct {
	Arch     string // "amd64", "arm64", "sparc64", "ppc64le", ...
	Vendor   string // "GenuineIntel", "AuthenticAMD", "ARM", "Apple", ...
	Family   int
	Model    int
	Stepping int
}

// PMUID uniquely identifies a registered PMU for the lifetime of the
// process. IDs are assigned in registration order starting at 0.
type PMUID uint32

// PMU is a performance-monitoring unit's complete schema: its event
// table, its modifier table, and the hooks that turn a resolved
// selection into hardware code words. Every field here is either static
// data (tables) or a small pure function (hooks); no PMU implementation
// opens a counter or touches the OS.
type PMU struct {
	ID   PMUID
	Name string // the "pmu::" prefix users type, e.g. "wsm"
	Desc string

	// MaxEncoding bounds how many uint64 code words Encode may return.
	MaxEncoding int

	Events    []Event
	Modifiers map[string]Modifier
	// ModifierOrder is the canonical print order used by the formatter;
	// it must contain exactly the keys of Modifiers.
	ModifierOrder []string

	// UmaskBit/UmaskWidth locate the generic umask OR-field within
	// code[0] for PMUs that use genericEncode. RawUmaskWidth governs how
	// wide a bare "0xNN" raw umask token may be; PMUs with no generic
	// umask field (sparc, power, arm) may still set it if they accept
	// raw umasks through their own Encode hook.
	UmaskBit      int
	UmaskWidth    int
	RawUmaskWidth int
	InherentBits  uint64

	// EdgeRequiresCmask enforces the policy that an edge-detect modifier
	// without a nonzero counter-mask is not observable in hardware.
	EdgeRequiresCmask bool

	// PrivGroup names the modifiers (subset of Modifiers) that form the
	// privilege-defaulting group, e.g. ["k", "u"] or ["k", "u", "h", "g"].
	// A nil/empty PrivGroup (typical of uncore PMUs) disables the rule;
	// such PMUs normally don't declare k/u/h/g as modifiers at all.
	PrivGroup []string

	// Detect reports whether this PMU should be part of the active set
	// for the given CPU identity. A nil Detect is always active (used by
	// PMUs that exist independent of host CPU, such as software events).
	Detect func(CPUInfo) bool

	// Encode is the per-PMU hook that turns a resolved selection into 1
	// or more code words. Most x86-style PMUs use genericEncode.
	Encode func(pmu *PMU, sel *Resolved) ([]uint64, error)

	active bool
}

func (p *PMU) modifier(name string) (Modifier, bool) {
	m, ok := p.Modifiers[name]
	return m, ok
}

func (p *PMU) inPrivGroup(name string) bool {
	for _, n := range p.PrivGroup {
		if ciEqual(n, name) {
			return true
		}
	}
	return false
}

// Registry holds every registered PMU and the subset currently active
// for the detected (or injected) host.
type Registry struct {
	mu        sync.RWMutex
	pmus      []*PMU
	byName    map[string]*PMU
	info      CPUInfo
	forceName string
	init      bool
}

// global is the process-wide registry used by the package-level
// convenience functions (GetEventEncoding, Initialize, and so on).
var global = newRegistry()

func newRegistry() *Registry {
	return &Registry{byName: make(map[string]*PMU)}
}

// RegisterPMU adds pmu to the registry. It runs the table validator
// immediately and returns its error rather than registering a PMU whose
// tables are internally inconsistent. RegisterPMU is not safe to call
// concurrently with Initialize or with event resolution; registration is
// expected to happen during package init, before any lookup.
func (r *Registry) RegisterPMU(pmu *PMU) error {
	if err := validatePMU(pmu); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[lower(pmu.Name)]; dup {
		return newError(ERR_INVAL, "pmu %q already registered", pmu.Name)
	}
	pmu.ID = PMUID(len(r.pmus))
	r.pmus = append(r.pmus, pmu)
	r.byName[lower(pmu.Name)] = pmu
	return nil
}

// Initialize runs Detect across every registered PMU against info and
// computes the active set. PFM_FORCE_PMU, if set in the environment,
// overrides detection and activates only the named PMU; this exists so
// tests and operators can pin a PMU without faking CPUInfo.
func (r *Registry) Initialize(info CPUInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = info
	r.forceName = os.Getenv("PFM_FORCE_PMU")
	for _, pmu := range r.pmus {
		switch {
		case r.forceName != "":
			pmu.active = ciEqual(pmu.Name, r.forceName)
		case pmu.Detect == nil:
			pmu.active = true
		default:
			pmu.active = pmu.Detect(info)
		}
	}
	r.init = true
	return nil
}

// Terminate clears the active set and the initialized flag. It does not
// unregister any PMU; callers may re-Initialize afterward (for example,
// after injecting a different CPUInfo in a test).
func (r *Registry) Terminate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pmu := range r.pmus {
		pmu.active = false
	}
	r.init = false
}

func (r *Registry) requireInit() error {
	if !r.init {
		return newError(ERR_NOINIT, "")
	}
	return nil
}

// activePMUs returns the active PMUs in registration order.
func (r *Registry) activePMUs() []*PMU {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*PMU, 0, len(r.pmus))
	for _, pmu := range r.pmus {
		if pmu.active {
			out = append(out, pmu)
		}
	}
	return out
}

// pmuByName looks up a PMU by its registered name among the active set,
// case-insensitively.
func (r *Registry) pmuByName(name string) (*PMU, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pmu, ok := r.byName[lower(name)]
	if !ok || !pmu.active {
		return nil, false
	}
	return pmu, true
}

// allPMUs returns every registered PMU (active or not) sorted by ID, for
// the enumeration API.
func (r *Registry) allPMUs() []*PMU {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]*PMU(nil), r.pmus...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Initialize runs the global registry's detection against info. Package
// users call this once at startup, typically with the result of
// cpuprobe.Probe.
func Initialize(info CPUInfo) error { return global.Initialize(info) }

// InitializeHost probes the running machine with cpuprobe and initializes
// the global registry from the result. It is the common case: callers
// that need to fabricate a CPUInfo (tests, cross-building a report for a
// different host) use Initialize directly instead.
func InitializeHost() error {
	p, _ := cpuprobe.Probe()
	return global.Initialize(CPUInfo{
		Arch:     p.Arch,
		Vendor:   p.Vendor,
		Family:   p.Family,
		Model:    p.Model,
		Stepping: p.Stepping,
	})
}

// Terminate deactivates every PMU in the global registry.
func Terminate() { global.Terminate() }

// RegisterPMU adds pmu to the global registry.
func RegisterPMU(pmu *PMU) error { return global.RegisterPMU(pmu) }
