package feed

import (
	"sort"
	"strings"
)

const (
	MaxRadiusKm = 200
	MaxLimit    = 50
)

// Query is the validated input of the feed handler. Constructed once per
// request and never mutated.
type Query struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
	Cursor    string // opaque token from a previous page, or empty
	Tags      []string
}

// NormalizedTags returns the tag filter trimmed, lowercased, deduplicated
// and sorted. Both the tag filter and the ETag fingerprint use this form
// so equivalent tag lists behave identically.
func (q Query) NormalizedTags() []string {
	seen := make(map[string]bool, len(q.Tags))
	out := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Validate reports field-level problems, or nil when the query is usable.
// A cursor that does not decode is a validation failure here, never a
// silent restart from page 1.
func (q Query) Validate() map[string]string {
	errs := map[string]string{}
	if q.Latitude < -90 || q.Latitude > 90 {
		errs["lat"] = "must be between -90 and 90"
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		errs["lng"] = "must be between -180 and 180"
	}
	if q.RadiusKm <= 0 || q.RadiusKm > MaxRadiusKm {
		errs["radius"] = "must be greater than 0 and at most 200"
	}
	if q.Limit <= 0 || q.Limit > MaxLimit {
		errs["limit"] = "must be greater than 0 and at most 50"
	}
	if q.Cursor != "" {
		if _, ok := DecodeCursor(q.Cursor); !ok {
			errs["cursor"] = "malformed pagination cursor"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
