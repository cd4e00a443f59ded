// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

// This file is named to sort after every builtin_*.go file so its init
// runs once every PMU has registered. Tests exercise every PMU's schema
// regardless of which host actually runs `go test`, so detection is
// bypassed here rather than routed through CPUInfo/PFM_FORCE_PMU: real
// hardware would only ever activate one PMU family at a time, which
// would make the cross-PMU literal scenarios in resolver_test.go
// untestable on any single machine.
func init() {
	global.mu.Lock()
	for _, p := range global.pmus {
		p.active = true
	}
	global.init = true
	global.mu.Unlock()
}
