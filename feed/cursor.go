package feed

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cursor pins the sort-key tuple of the last item on a page. Continuation
// keeps only events that sort strictly after it, so pages never skip or
// repeat an event even when several share the same timestamp, distance
// and engagement.
type Cursor struct {
	CreatedAt  time.Time
	DistanceKm float64
	Engagement float64
	EventID    string
}

// EncodeCursor serializes the tuple as
// "{unixNanos}:{distanceKm}:{engagement}:{eventId}" and base64-encodes it.
// The float fields use shortest round-trip formatting so
// DecodeCursor(EncodeCursor(c)) reproduces c exactly. The token is opaque
// to clients.
func EncodeCursor(c Cursor) string {
	raw := strings.Join([]string{
		strconv.FormatInt(c.CreatedAt.UTC().UnixNano(), 10),
		strconv.FormatFloat(c.DistanceKm, 'g', -1, 64),
		strconv.FormatFloat(c.Engagement, 'g', -1, 64),
		c.EventID,
	}, ":")
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a client-supplied token. It reports ok=false on any
// malformed input (bad base64, wrong part count, non-numeric field, bad
// event id) and never panics; callers decide whether that is a validation
// failure.
func DecodeCursor(token string) (Cursor, bool) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}
	parts := strings.Split(string(b), ":")
	if len(parts) != 4 {
		return Cursor{}, false
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	dist, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Cursor{}, false
	}
	eng, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Cursor{}, false
	}
	id, err := uuid.Parse(parts[3])
	if err != nil {
		return Cursor{}, false
	}
	return Cursor{
		CreatedAt:  time.Unix(0, nanos).UTC(),
		DistanceKm: dist,
		Engagement: eng,
		EventID:    id.String(),
	}, true
}
