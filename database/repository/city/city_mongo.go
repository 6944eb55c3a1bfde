package cityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repairhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no city or state matches.
var ErrNotFound = errors.New("city not found")

// MongoCityRepo implements CityRepository using MongoDB.
type MongoCityRepo struct {
	cities *mongo.Collection
	states *mongo.Collection
}

// NewMongoCityRepo creates a CityRepository on the "cities" and "states" collections.
func NewMongoCityRepo(db *mongo.Database) CityRepository {
	return &MongoCityRepo{
		cities: db.Collection("cities"),
		states: db.Collection("states"),
	}
}

func (r *MongoCityRepo) ListSummaries(ctx context.Context) ([]models.CitySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find().
		SetProjection(bson.M{"id": 1, "name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.cities.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer cursor.Close(ctx)
	out := []models.CitySummary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}
	return out, nil
}

func (r *MongoCityRepo) ListActive(ctx context.Context) ([]models.City, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	cursor, err := r.cities.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list active cities: %w", err)
	}
	defer cursor.Close(ctx)
	var out []models.City
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}
	return out, nil
}

func (r *MongoCityRepo) GetByID(ctx context.Context, id string) (*models.City, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var city models.City
	if err := r.cities.FindOne(ctx, bson.M{"id": id}).Decode(&city); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch city %s: %w", id, err)
	}
	return &city, nil
}

func (r *MongoCityRepo) Create(ctx context.Context, city *models.City) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	city.CreatedAt = time.Now()
	city.UpdatedAt = city.CreatedAt
	if _, err := r.cities.InsertOne(ctx, city); err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}
	return nil
}

func (r *MongoCityRepo) UpdatePincodes(ctx context.Context, id string, pincodes []string) error {
	return r.update(ctx, id, bson.M{"pincodes": pincodes})
}

func (r *MongoCityRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, bson.M{"is_active": active})
}

func (r *MongoCityRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := r.cities.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete city %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCityRepo) GetState(ctx context.Context, id string) (*models.State, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var state models.State
	if err := r.states.FindOne(ctx, bson.M{"id": id}).Decode(&state); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch state %s: %w", id, err)
	}
	return &state, nil
}

func (r *MongoCityRepo) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	set["updated_at"] = time.Now()
	result, err := r.cities.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update city %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the city lookup indexes.
func (r *MongoCityRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := r.cities.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "pincodes", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create city indexes: %w", err)
	}
	return nil
}
