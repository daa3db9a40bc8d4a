package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"linkup/feed"
)

const (
	defaultFeedRadiusKm = 10
	defaultFeedLimit    = 20
)

// GET /events/feed
//
// Validates the query, runs the feed pipeline and applies conditional-GET:
// the response carries a deterministic ETag, and a request whose
// If-None-Match already holds that value gets 304 with an empty body.
func (d *deps) getFeed(c *gin.Context) {
	start := time.Now()
	status := http.StatusOK
	if d.Metrics != nil {
		defer func() {
			d.Metrics.ObserveFeed(strconv.Itoa(status), time.Since(start))
		}()
	}

	q, fieldErrs := parseFeedQuery(c)
	if len(fieldErrs) > 0 {
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"message": "Invalid feed query.", "errors": fieldErrs})
		return
	}

	res, err := d.Feed.Handle(c.Request.Context(), q)
	if err != nil {
		status = http.StatusInternalServerError
		c.JSON(status, gin.H{"message": "Could not fetch feed. Try again later."})
		return
	}

	etag := feed.BuildETag(q, res)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public,max-age=60")

	if matchesETag(c.GetHeader("If-None-Match"), etag) {
		status = http.StatusNotModified
		c.Status(status)
		return
	}

	c.JSON(http.StatusOK, res)
}

// parseFeedQuery builds a validated feed.Query from the request. All
// client-input failures are caught here; the handler never sees an
// invalid query.
func parseFeedQuery(c *gin.Context) (feed.Query, map[string]string) {
	errs := map[string]string{}
	q := feed.Query{RadiusKm: defaultFeedRadiusKm, Limit: defaultFeedLimit}

	parseF := func(name string, required bool, dst *float64) {
		raw := c.Query(name)
		if raw == "" {
			if required {
				errs[name] = "is required"
			}
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[name] = "must be a number"
			return
		}
		*dst = v
	}

	parseF("lat", true, &q.Latitude)
	parseF("lng", true, &q.Longitude)
	parseF("radius", false, &q.RadiusKm)

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs["limit"] = "must be an integer"
		} else {
			q.Limit = v
		}
	}

	q.Cursor = c.Query("cursor")

	// tags may repeat and may be comma-joined
	for _, v := range c.QueryArray("tags") {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Tags = append(q.Tags, t)
			}
		}
	}

	if len(errs) > 0 {
		return q, errs
	}
	if vErrs := q.Validate(); vErrs != nil {
		return q, vErrs
	}
	return q, nil
}

// matchesETag reports whether any comma-separated If-None-Match value
// equals the ETag byte-for-byte after trimming.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, v := range strings.Split(header, ",") {
		if strings.TrimSpace(v) == etag {
			return true
		}
	}
	return false
}
