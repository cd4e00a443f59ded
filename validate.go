// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var validateLog = logrus.WithField("component", "pfm.validate")

// validatePMU runs the structural checks a PMU's static tables must pass
// before the PMU is usable: no duplicate event names, no duplicate
// umask names or more than one default per group within an event, no
// two modifiers overlapping the same bits, and every event's Modifiers
// list naming something the PMU actually declares. The checks are
// independent of one another, so they run concurrently and the first
// failure is reported; malformed tables are a programming error in the
// PMU definition, not a runtime condition, so validation failing here
// should never happen outside of development.
func validatePMU(pmu *PMU) error {
	if pmu.Name == "" {
		return newError(ERR_INVAL, "pmu has no name")
	}

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error { return checkEventNames(pmu) })
	g.Go(func() error { return checkUmaskGroups(pmu) })
	g.Go(func() error { return checkModifierBits(pmu) })
	g.Go(func() error { return checkEventModifiers(pmu) })

	if err := g.Wait(); err != nil {
		validateLog.WithField("pmu", pmu.Name).WithError(err).Warn("pmu table rejected")
		return newError(ERR_INVAL, "pmu %q: %s", pmu.Name, err)
	}

	if len(pmu.Events) == 0 {
		validateLog.WithField("pmu", pmu.Name).Warn("pmu registered with no events")
	}
	return nil
}

func checkEventNames(pmu *PMU) error {
	seen := make(map[string]bool, len(pmu.Events))
	for _, ev := range pmu.Events {
		for _, name := range []string{ev.Name, ev.Alias} {
			if name == "" {
				continue
			}
			key := lower(name)
			if seen[key] {
				return errors.Wrapf(errDupEvent, "%q", name)
			}
			seen[key] = true
		}
	}
	return nil
}

var errDupEvent = fmt.Errorf("duplicate event name")

func checkUmaskGroups(pmu *PMU) error {
	for _, ev := range pmu.Events {
		names := make(map[string]bool, len(ev.Umasks))
		defaults := make(map[int]bool)
		for _, u := range ev.Umasks {
			key := lower(u.Name)
			if names[key] {
				return errors.Wrapf(fmt.Errorf("duplicate umask"), "event %q umask %q", ev.Name, u.Name)
			}
			names[key] = true
			if u.Default {
				if defaults[u.GroupID] {
					return errors.Wrapf(fmt.Errorf("more than one default umask"), "event %q group %d", ev.Name, u.GroupID)
				}
				defaults[u.GroupID] = true
			}
		}
	}
	return nil
}

func checkModifierBits(pmu *PMU) error {
	type span struct{ lo, hi int }
	var spans []span
	if pmu.UmaskWidth > 0 {
		spans = append(spans, span{pmu.UmaskBit, pmu.UmaskBit + pmu.UmaskWidth - 1})
	}
	for _, name := range pmu.ModifierOrder {
		m, ok := pmu.Modifiers[name]
		if !ok {
			return errors.Wrapf(fmt.Errorf("modifier order references undeclared modifier"), "%q", name)
		}
		w := m.Width
		if w <= 0 {
			w = 1
		}
		spans = append(spans, span{m.Bit, m.Bit + w - 1})
	}
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].lo <= spans[j].hi && spans[j].lo <= spans[i].hi {
				return fmt.Errorf("overlapping bit ranges [%d,%d] and [%d,%d]", spans[i].lo, spans[i].hi, spans[j].lo, spans[j].hi)
			}
		}
	}
	return nil
}

func checkEventModifiers(pmu *PMU) error {
	for _, ev := range pmu.Events {
		for _, name := range ev.Modifiers {
			if _, ok := pmu.Modifiers[name]; !ok {
				return errors.Wrapf(fmt.Errorf("event references undeclared modifier"), "event %q modifier %q", ev.Name, name)
			}
		}
	}
	return nil
}
