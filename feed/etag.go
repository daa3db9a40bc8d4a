package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// BuildETag derives the conditional-GET validator for a feed response:
// a quoted hex sha256 over a fingerprint of the normalized query and the
// returned rows. The fingerprint contains only fixed-precision serialized
// inputs, so identical logical states always hash to the same ETag and
// any change to an event's counters, lastModified or position invalidates
// it.
func BuildETag(q Query, r Result) string {
	events := "empty"
	if len(r.Events) > 0 {
		rows := make([]string, 0, len(r.Events))
		for _, e := range r.Events {
			rows = append(rows, strings.Join([]string{
				e.ID,
				strconv.FormatInt(e.CreatedAt.UTC().UnixNano(), 10),
				strconv.FormatInt(e.LastModified.UTC().UnixNano(), 10),
				strconv.FormatFloat(e.DistanceKm, 'f', 6, 64),
				strconv.FormatInt(e.Registrations, 10),
				strconv.FormatInt(e.Likes, 10),
				strconv.FormatFloat(e.Engagement, 'f', 6, 64),
			}, ":"))
		}
		events = strings.Join(rows, ";")
	}

	next := ""
	if r.NextCursor != nil {
		next = *r.NextCursor
	}

	fingerprint := strings.Join([]string{
		strconv.FormatFloat(q.Latitude, 'f', 6, 64),
		strconv.FormatFloat(q.Longitude, 'f', 6, 64),
		strconv.FormatFloat(q.RadiusKm, 'f', 2, 64),
		strconv.Itoa(q.Limit),
		q.Cursor,
		strings.Join(q.NormalizedTags(), ","),
		next,
		events,
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
