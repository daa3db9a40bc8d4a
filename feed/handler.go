// Package feed implements the geo-ranked event feed: proximity filtering,
// a composite recency/distance/engagement ordering, cursor pagination and
// the deterministic ETag used for HTTP conditional GET.
package feed

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"linkup/geoutil"
	"linkup/models"
)

// floatTolerance absorbs cross-platform floating-point jitter when
// distance and engagement are compared for equality. The sort comparator
// and the cursor continuation predicate share it so both see the same
// ties.
const floatTolerance = 1e-6

// ErrBadCursor marks a cursor that fails to decode inside the handler.
// Validation rejects such cursors upstream; seeing this error means a
// request slipped past validation, and the handler refuses to quietly
// restart the caller at page 1.
var ErrBadCursor = errors.New("feed: cursor does not decode")

// EventCard is the read-only projection the feed returns. Nothing in it
// is persisted; it lives for one request.
type EventCard struct {
	ID            string    `json:"id"`
	OwnerID       int64     `json:"ownerId"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	StartTime     time.Time `json:"startTime"`
	CreatedAt     time.Time `json:"createdAt"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	DistanceKm    float64   `json:"distanceKm"`
	Registrations int64     `json:"registrations"`
	Likes         int64     `json:"likes"`
	Engagement    float64   `json:"engagement"`
	Tags          []string  `json:"tags,omitempty"`
	LastModified  time.Time `json:"lastModified"`
}

type Result struct {
	Events     []EventCard `json:"events"`
	NextCursor *string     `json:"nextCursor"`
}

type Handler struct {
	events  models.EventRepository
	metrics models.EventMetricsRepository
}

func NewHandler(events models.EventRepository, metrics models.EventMetricsRepository) *Handler {
	return &Handler{events: events, metrics: metrics}
}

// Handle runs the filter/join/sort/paginate pipeline for one validated
// query. It is a pure read path: no store state is mutated, and no page
// is returned once ctx is cancelled. Counters that change between two
// page fetches show up on the later page; that eventual-consistency gap
// is accepted, the query does not run inside a transaction snapshot.
func (h *Handler) Handle(ctx context.Context, q Query) (Result, error) {
	candidates, err := h.events.FindNearby(ctx, q.Latitude, q.Longitude, q.RadiusKm)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ids := make([]string, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
	}
	stats, err := h.metrics.ForEvents(ctx, ids)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	wanted := q.NormalizedTags()
	cards := make([]EventCard, 0, len(candidates))
	for _, e := range candidates {
		d := geoutil.DistanceKm(q.Latitude, q.Longitude, e.Latitude, e.Longitude)
		if d > q.RadiusKm { // the boundary itself stays in
			continue
		}
		card := newCard(e, d, stats[e.ID])
		if len(wanted) > 0 && !hasAnyTag(card.Tags, wanted) {
			continue
		}
		cards = append(cards, card)
	}

	if q.Cursor != "" {
		cur, ok := DecodeCursor(q.Cursor)
		if !ok {
			return Result{}, ErrBadCursor
		}
		kept := make([]EventCard, 0, len(cards))
		for _, c := range cards {
			if compareKeys(c.key(), cur.key()) > 0 {
				kept = append(kept, c)
			}
		}
		cards = kept
	}

	sort.Slice(cards, func(i, j int) bool {
		return compareKeys(cards[i].key(), cards[j].key()) < 0
	})

	res := Result{Events: cards}
	if len(cards) > q.Limit {
		res.Events = cards[:q.Limit]
		last := res.Events[q.Limit-1]
		token := EncodeCursor(Cursor{
			CreatedAt:  last.CreatedAt,
			DistanceKm: last.DistanceKm,
			Engagement: last.Engagement,
			EventID:    last.ID,
		})
		res.NextCursor = &token
	}
	return res, nil
}

func newCard(e models.Event, distanceKm float64, m models.EventMetrics) EventCard {
	last := e.CreatedAt
	if m.UpdatedAt.After(last) {
		last = m.UpdatedAt
	}
	return EventCard{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		Title:         e.Name,
		Description:   e.Description,
		StartTime:     e.StartTime,
		CreatedAt:     e.CreatedAt,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		DistanceKm:    distanceKm,
		Registrations: m.Registrations,
		Likes:         m.Likes,
		Engagement:    float64(m.Registrations + m.Likes),
		Tags:          e.Tags,
		LastModified:  last,
	}
}

func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

// sortKey is the feed's total order: createdAt descending, distance
// ascending, engagement descending, event id ascending. The id tie-break
// means no two distinct events ever compare equal, which is what keeps
// cursor positions unambiguous.
type sortKey struct {
	createdAt  time.Time
	distanceKm float64
	engagement float64
	eventID    string
}

func (c EventCard) key() sortKey {
	return sortKey{c.CreatedAt, c.DistanceKm, c.Engagement, c.ID}
}

func (c Cursor) key() sortKey {
	return sortKey{c.CreatedAt, c.DistanceKm, c.Engagement, c.EventID}
}

func compareKeys(a, b sortKey) int {
	if a.createdAt.After(b.createdAt) {
		return -1
	}
	if b.createdAt.After(a.createdAt) {
		return 1
	}
	if diff := a.distanceKm - b.distanceKm; diff < -floatTolerance {
		return -1
	} else if diff > floatTolerance {
		return 1
	}
	if diff := a.engagement - b.engagement; diff > floatTolerance {
		return -1
	} else if diff < -floatTolerance {
		return 1
	}
	return strings.Compare(a.eventID, b.eventID)
}
