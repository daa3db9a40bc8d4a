package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkup/feed"
	"linkup/models"
)

func seedFeedEvents(deps serverDeps) {
	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	ids := []string{
		"aaaa1111-0000-4000-8000-000000000001",
		"bbbb2222-0000-4000-8000-000000000002",
		"cccc3333-0000-4000-8000-000000000003",
	}
	for _, id := range ids {
		deps.er.Items[id] = models.Event{
			ID:        id,
			OwnerID:   1,
			Name:      "seeded",
			Latitude:  25.0330,
			Longitude: 121.5654,
			CreatedAt: t0,
		}
	}
	deps.mr.Data[ids[0]] = models.EventMetrics{Registrations: 2, Likes: 1, UpdatedAt: t0.Add(time.Hour)}
}

func getFeed(deps serverDeps, path, ifNoneMatch string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	deps.s.ServeHTTP(w, req)
	return w
}

func TestFeed_OK_WithETagAndCacheControl(t *testing.T) {
	deps := setupServerWithDeps(t)
	seedFeedEvents(deps)

	w := getFeed(deps, "/events/feed?lat=25.0330&lng=121.5654&radius=5&limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", w.Code, w.Body.String())
	}
	if et := w.Header().Get("ETag"); et == "" {
		t.Fatalf("missing ETag header")
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public,max-age=60" {
		t.Fatalf("unexpected Cache-Control %q", cc)
	}

	var res feed.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(res.Events) != 3 {
		t.Fatalf("want 3 events, got %d", len(res.Events))
	}
	if res.NextCursor != nil {
		t.Fatalf("no more pages expected, got cursor %q", *res.NextCursor)
	}
}

func TestFeed_ConditionalGet_304(t *testing.T) {
	deps := setupServerWithDeps(t)
	seedFeedEvents(deps)
	path := "/events/feed?lat=25.0330&lng=121.5654&radius=5&limit=10"

	first := getFeed(deps, path, "")
	if first.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", first.Code)
	}
	etag := first.Header().Get("ETag")

	// echoing the ETag back yields 304 with an empty body
	second := getFeed(deps, path, etag)
	if second.Code != http.StatusNotModified {
		t.Fatalf("want 304, got %d body=%s", second.Code, second.Body.String())
	}
	if second.Body.Len() != 0 {
		t.Fatalf("304 must have empty body, got %q", second.Body.String())
	}
	if second.Header().Get("ETag") != etag {
		t.Fatalf("304 must repeat the ETag")
	}

	// list form with surrounding whitespace also matches
	third := getFeed(deps, path, `"stale", `+etag)
	if third.Code != http.StatusNotModified {
		t.Fatalf("want 304 for list match, got %d", third.Code)
	}

	// a stale validator gets fresh content
	fourth := getFeed(deps, path, `"0000000000000000000000000000000000000000000000000000000000000000"`)
	if fourth.Code != http.StatusOK {
		t.Fatalf("want 200 for stale validator, got %d", fourth.Code)
	}
}

func TestFeed_ETagChangesWhenCountersChange(t *testing.T) {
	deps := setupServerWithDeps(t)
	seedFeedEvents(deps)
	path := "/events/feed?lat=25.0330&lng=121.5654&radius=5&limit=10"

	first := getFeed(deps, path, "")
	etag := first.Header().Get("ETag")

	// one more like lands; the old validator must stop matching
	m := deps.mr.Data["aaaa1111-0000-4000-8000-000000000001"]
	m.Likes++
	m.UpdatedAt = m.UpdatedAt.Add(time.Minute)
	deps.mr.Data["aaaa1111-0000-4000-8000-000000000001"] = m

	second := getFeed(deps, path, etag)
	if second.Code != http.StatusOK {
		t.Fatalf("want 200 after counter change, got %d", second.Code)
	}
	if second.Header().Get("ETag") == etag {
		t.Fatalf("ETag must change when a like lands")
	}
}

func TestFeed_PaginationOverHTTP(t *testing.T) {
	deps := setupServerWithDeps(t)
	seedFeedEvents(deps)

	path := "/events/feed?lat=25.0330&lng=121.5654&radius=5&limit=1"
	var walked []string
	for i := 0; i < 5; i++ {
		w := getFeed(deps, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", w.Code, w.Body.String())
		}
		var res feed.Result
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		for _, e := range res.Events {
			walked = append(walked, e.ID)
		}
		if res.NextCursor == nil {
			break
		}
		path = "/events/feed?lat=25.0330&lng=121.5654&radius=5&limit=1&cursor=" + *res.NextCursor
	}

	want := []string{
		"aaaa1111-0000-4000-8000-000000000001", // highest engagement first, then id order
		"bbbb2222-0000-4000-8000-000000000002",
		"cccc3333-0000-4000-8000-000000000003",
	}
	if len(walked) != len(want) {
		t.Fatalf("walked %v, want %v", walked, want)
	}
	for i := range want {
		if walked[i] != want[i] {
			t.Fatalf("walked %v, want %v", walked, want)
		}
	}
}

func TestFeed_Validation400(t *testing.T) {
	deps := setupServerWithDeps(t)

	cases := []struct {
		name  string
		path  string
		field string
	}{
		{"missing_lat", "/events/feed?lng=121.5", "lat"},
		{"lat_out_of_range", "/events/feed?lat=999&lng=121.5", "lat"},
		{"lng_out_of_range", "/events/feed?lat=25&lng=360", "lng"},
		{"radius_too_large", "/events/feed?lat=25&lng=121.5&radius=500", "radius"},
		{"radius_zero", "/events/feed?lat=25&lng=121.5&radius=0", "radius"},
		{"limit_too_large", "/events/feed?lat=25&lng=121.5&limit=100", "limit"},
		{"limit_not_a_number", "/events/feed?lat=25&lng=121.5&limit=abc", "limit"},
		{"bad_cursor", "/events/feed?lat=25&lng=121.5&cursor=not-base64!!", "cursor"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := getFeed(deps, tc.path, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", w.Code, w.Body.String())
			}
			var resp struct {
				Errors map[string]string `json:"errors"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, ok := resp.Errors[tc.field]; !ok {
				t.Fatalf("want field error for %q, got %v", tc.field, resp.Errors)
			}
		})
	}
}
