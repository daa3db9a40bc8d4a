package models

import (
	"context"
	"time"
)

// GeoPoint is the GeoJSON shape Mongo needs for 2dsphere queries.
// Coordinates are [lng, lat] per the GeoJSON spec.
type GeoPoint struct {
	Type        string     `bson:"type" json:"-"`
	Coordinates [2]float64 `bson:"coordinates" json:"-"`
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

type Event struct {
	ID          string    `json:"id" bson:"id"` // UUID, shared key across stores
	OwnerID     int64     `json:"ownerId" bson:"ownerId"`
	Name        string    `json:"name" bson:"name" binding:"required"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Latitude    float64   `json:"latitude" bson:"latitude"`
	Longitude   float64   `json:"longitude" bson:"longitude"`
	Location    GeoPoint  `json:"-" bson:"location"`
	Tags        []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	StartTime   time.Time `json:"startTime" bson:"startTime"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// ===== Events =====
type EventRepository interface {
	GetAll() ([]Event, error)
	GetByID(id string) (Event, error)
	Create(e *Event) error
	Update(e *Event) error
	Delete(id string) error
	// FindNearby returns a superset of the events within radiusKm of the
	// origin; the feed handler applies the exact inclusive-boundary cut.
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Event, error)
}

// ===== Users =====
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type UserRepository interface {
	Create(u *User) error
	ValidateCredentials(email, plain string) (User, error)
	GetByID(id int64) (User, error)
}

// ===== Registrations =====
type RegistrationRepository interface {
	Register(userID int64, eventID string) error
	Cancel(userID int64, eventID string) error
}

// ===== Likes =====
type LikeRepository interface {
	Like(userID int64, eventID string) error
	Unlike(userID int64, eventID string) error
}

// ===== Follows =====
type FollowRepository interface {
	Follow(followerID, followeeID int64) error
	Unfollow(followerID, followeeID int64) error
}

// ===== Event metrics =====

// EventMetrics carries the per-event counters the feed blends into its
// engagement score. UpdatedAt is the newest counter row; the zero value
// stands in for events nobody registered for or liked yet.
type EventMetrics struct {
	Registrations int64
	Likes         int64
	UpdatedAt     time.Time
}

type EventMetricsRepository interface {
	ForEvents(ctx context.Context, eventIDs []string) (map[string]EventMetrics, error)
}
