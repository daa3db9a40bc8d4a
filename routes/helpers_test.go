package routes_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"linkup/feed"
	"linkup/models"
	"linkup/routes"
	"linkup/utils"
)

/* ---------- in-memory repos ---------- */

type mockUserRepo struct {
	Users map[string]models.User // keyed by email
}

func (m *mockUserRepo) Create(u *models.User) error {
	if _, ok := m.Users[u.Email]; ok {
		return errors.New("dup")
	}
	u.ID = int64(len(m.Users) + 1)
	m.Users[u.Email] = *u
	return nil
}

func (m *mockUserRepo) ValidateCredentials(email, plain string) (models.User, error) {
	u, ok := m.Users[email]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	// mocks keep passwords in the clear; bcrypt is covered in utils tests
	if u.Password != plain {
		return models.User{}, errors.New("bad")
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(id int64) (models.User, error) {
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, errors.New("not found")
}

type mockEventRepo struct{ Items map[string]models.Event }

func (m *mockEventRepo) GetAll() ([]models.Event, error) {
	out := make([]models.Event, 0, len(m.Items))
	for _, e := range m.Items {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEventRepo) GetByID(id string) (models.Event, error) {
	e, ok := m.Items[id]
	if !ok {
		return models.Event{}, errors.New("nf")
	}
	return e, nil
}

func (m *mockEventRepo) Create(e *models.Event) error { m.Items[e.ID] = *e; return nil }
func (m *mockEventRepo) Update(e *models.Event) error {
	if _, ok := m.Items[e.ID]; !ok {
		return errors.New("nf")
	}
	m.Items[e.ID] = *e
	return nil
}
func (m *mockEventRepo) Delete(id string) error { delete(m.Items, id); return nil }

func (m *mockEventRepo) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Event, error) {
	// superset, same as the Mongo pre-filter; the handler cuts exactly
	return m.GetAll()
}

type mockRegRepo struct{ Pairs map[string]bool } // "userId:eventId"

func (m *mockRegRepo) Register(uid int64, eid string) error {
	k := pairKey(uid, eid)
	if m.Pairs[k] {
		return errors.New("dup")
	}
	m.Pairs[k] = true
	return nil
}

func (m *mockRegRepo) Cancel(uid int64, eid string) error {
	delete(m.Pairs, pairKey(uid, eid))
	return nil
}

type mockLikeRepo struct{ Pairs map[string]bool }

func (m *mockLikeRepo) Like(uid int64, eid string) error {
	k := pairKey(uid, eid)
	if m.Pairs[k] {
		return errors.New("dup")
	}
	m.Pairs[k] = true
	return nil
}

func (m *mockLikeRepo) Unlike(uid int64, eid string) error {
	delete(m.Pairs, pairKey(uid, eid))
	return nil
}

type mockFollowRepo struct{ Pairs map[string]bool }

func (m *mockFollowRepo) Follow(follower, followee int64) error {
	k := fmt.Sprintf("%d:%d", follower, followee)
	if m.Pairs[k] {
		return errors.New("dup")
	}
	m.Pairs[k] = true
	return nil
}

func (m *mockFollowRepo) Unfollow(follower, followee int64) error {
	delete(m.Pairs, fmt.Sprintf("%d:%d", follower, followee))
	return nil
}

type mockMetricsRepo struct{ Data map[string]models.EventMetrics }

func (m *mockMetricsRepo) ForEvents(ctx context.Context, ids []string) (map[string]models.EventMetrics, error) {
	return m.Data, nil
}

func pairKey(uid int64, eid string) string { return fmt.Sprintf("%d:%s", uid, eid) }

/* ---------- server setup ---------- */

type serverDeps struct {
	s  *gin.Engine
	ur *mockUserRepo
	rr *mockRegRepo
	er *mockEventRepo
	lr *mockLikeRepo
	fr *mockFollowRepo
	mr *mockMetricsRepo
}

func setupServerWithDeps(t *testing.T) serverDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	d := serverDeps{
		ur: &mockUserRepo{Users: map[string]models.User{}},
		rr: &mockRegRepo{Pairs: map[string]bool{}},
		er: &mockEventRepo{Items: map[string]models.Event{}},
		lr: &mockLikeRepo{Pairs: map[string]bool{}},
		fr: &mockFollowRepo{Pairs: map[string]bool{}},
		mr: &mockMetricsRepo{Data: map[string]models.EventMetrics{}},
	}

	s := gin.New()
	routes.RegisterRoutes(s, routes.Services{
		Users:   d.ur,
		Regs:    d.rr,
		Likes:   d.lr,
		Follows: d.fr,
		Events:  d.er,
		Feed:    feed.NewHandler(d.er, d.mr),
		Inv:     utils.NewCacheInvalidator(rdb),
	}, rdb)
	d.s = s
	return d
}

func authToken(t *testing.T, uid int64) string {
	t.Helper()
	token, err := utils.GenerateToken("tester@example.com", uid)
	if err != nil {
		t.Fatalf("gen token: %v", err)
	}
	return token
}

func doReq(s *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	s.ServeHTTP(w, req)
	return w
}
