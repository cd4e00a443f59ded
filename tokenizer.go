// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pfm

import "strings"

// attrToken is one ':'-separated field after the event name: either a
// bareword (HasValue false) or a "name=value" pair.
type attrToken struct {
	Name     string
	HasValue bool
	ValueStr string
}

// tokenized is the raw lexical decomposition of an event string, before
// any of its pieces are checked against a PMU's schema.
type tokenized struct {
	PMU   string // "" if the string had no "pmu::" prefix
	Event string
	Attrs []attrToken
}

// tokenize splits a raw event string of the form
// "[pmu::]event[:attr[:attr...]]" into its PMU prefix, event name, and
// attribute tokens. A top-level comma terminates the string outright:
// everything from the first comma onward, including the comma, is
// discarded before any further splitting happens. tokenize never
// consults a PMU's schema; ERR_ATTR_VAL here is purely about token
// shape ("=" with nothing on one or both sides).
func tokenize(s string) (tokenized, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}

	pmu := ""
	if i := strings.Index(s, "::"); i >= 0 {
		pmu = s[:i]
		s = s[i+2:]
	}

	parts := strings.Split(s, ":")
	if len(parts) == 0 || parts[0] == "" {
		return tokenized{}, newError(ERR_NOTFOUND, "empty event name")
	}

	out := tokenized{PMU: pmu, Event: parts[0]}
	for _, p := range parts[1:] {
		tok, err := parseAttrToken(p)
		if err != nil {
			return tokenized{}, err
		}
		out.Attrs = append(out.Attrs, tok)
	}
	return out, nil
}

func parseAttrToken(s string) (attrToken, error) {
	if strings.ContainsAny(s, " \t") {
		return attrToken{}, newError(ERR_ATTR, "attribute %q contains whitespace", s)
	}
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		if s == "" {
			return attrToken{}, newError(ERR_ATTR, "empty attribute")
		}
		return attrToken{Name: s}, nil
	}
	name, val := s[:eq], s[eq+1:]
	if name == "" || val == "" {
		return attrToken{}, newError(ERR_ATTR_VAL, "malformed attribute %q", s)
	}
	return attrToken{Name: name, HasValue: true, ValueStr: val}, nil
}
