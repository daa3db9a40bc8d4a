package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linkup/geoutil"
)

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) EventRepository {
	return &mongoEventRepo{col: col}
}

// EnsureEventIndexes creates the unique id index and the 2dsphere index
// the geo pre-filter depends on. Call once at startup.
func EnsureEventIndexes(ctx context.Context, col *mongo.Collection) error {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	})
	return err
}

func (r *mongoEventRepo) GetAll() ([]Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (r *mongoEventRepo) GetByID(id string) (Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (r *mongoEventRepo) Create(e *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.Location = NewGeoPoint(e.Latitude, e.Longitude)
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *mongoEventRepo) Update(e *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.Location = NewGeoPoint(e.Latitude, e.Longitude)
	_, err := r.col.UpdateOne(ctx, bson.M{"id": e.ID}, bson.M{"$set": e})
	return err
}

func (r *mongoEventRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	return err
}

// geoPrefilterPadKm widens the Mongo pre-filter a little so an event
// sitting exactly on the radius never gets lost to spherical rounding.
// The feed handler recomputes the exact distance and cuts inclusively.
const geoPrefilterPadKm = 0.05

func (r *mongoEventRepo) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Event, error) {
	filter := bson.M{"location": bson.M{"$geoWithin": bson.M{
		"$centerSphere": bson.A{
			[]float64{lng, lat},
			(radiusKm + geoPrefilterPadKm) / geoutil.EarthRadiusKm,
		},
	}}}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}
