package catalogRepo

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

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// MongoCatalogRepo implements CatalogRepository using one collection per entity.
type MongoCatalogRepo struct {
	categories    *mongo.Collection
	brands        *mongo.Collection
	devices       *mongo.Collection
	faults        *mongo.Collection
	serviceTypes  *mongo.Collection
	durationTypes *mongo.Collection
}

func NewMongoCatalogRepo(db *mongo.Database) CatalogRepository {
	return &MongoCatalogRepo{
		categories:    db.Collection("categories"),
		brands:        db.Collection("brands"),
		devices:       db.Collection("devices"),
		faults:        db.Collection("faults"),
		serviceTypes:  db.Collection("service_types"),
		durationTypes: db.Collection("duration_types"),
	}
}

// findAll runs a query and decodes every document into out.
func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, out any) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("%s query failed: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", coll.Name(), id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func updateByID(ctx context.Context, coll *mongo.Collection, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", coll.Name(), id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCatalogRepo) Categories(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	err := findAll(ctx, r.categories, bson.M{}, bson.D{{Key: "name", Value: 1}}, &out)
	return out, err
}

func (r *MongoCatalogRepo) Brands(ctx context.Context, categoryID string) ([]models.Brand, error) {
	out := []models.Brand{}
	err := findAll(ctx, r.brands, bson.M{"category_id": categoryID}, bson.D{{Key: "name", Value: 1}}, &out)
	return out, err
}

func (r *MongoCatalogRepo) Devices(ctx context.Context, brandID string) ([]models.Device, error) {
	out := []models.Device{}
	err := findAll(ctx, r.devices, bson.M{"brand_id": brandID}, bson.D{{Key: "model", Value: 1}}, &out)
	return out, err
}

func (r *MongoCatalogRepo) FindDevice(ctx context.Context, brandID, model string) (*models.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var d models.Device
	err := r.devices.FindOne(ctx, bson.M{"brand_id": brandID, "model": model}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device %s/%s: %w", brandID, model, err)
	}
	return &d, nil
}

func (r *MongoCatalogRepo) Faults(ctx context.Context, deviceID string) ([]models.Fault, error) {
	out := []models.Fault{}
	err := findAll(ctx, r.faults, bson.M{"device_id": deviceID, "is_active": true}, bson.D{{Key: "name", Value: 1}}, &out)
	return out, err
}

func (r *MongoCatalogRepo) ServiceTypes(ctx context.Context) ([]models.ServiceType, error) {
	out := []models.ServiceType{}
	err := findAll(ctx, r.serviceTypes, bson.M{"is_active": true}, nil, &out)
	return out, err
}

func (r *MongoCatalogRepo) DurationTypes(ctx context.Context) ([]models.DurationType, error) {
	out := []models.DurationType{}
	err := findAll(ctx, r.durationTypes, bson.M{"is_active": true}, bson.D{{Key: "sort_order", Value: 1}}, &out)
	return out, err
}

func (r *MongoCatalogRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return insertOne(ctx, r.categories, c)
}

func (r *MongoCatalogRepo) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, r.categories, id)
}

func (r *MongoCatalogRepo) CreateBrand(ctx context.Context, b *models.Brand) error {
	return insertOne(ctx, r.brands, b)
}

func (r *MongoCatalogRepo) DeleteBrand(ctx context.Context, id string) error {
	return deleteByID(ctx, r.brands, id)
}

func (r *MongoCatalogRepo) CreateDevice(ctx context.Context, d *models.Device) error {
	return insertOne(ctx, r.devices, d)
}

func (r *MongoCatalogRepo) DeleteDevice(ctx context.Context, id string) error {
	return deleteByID(ctx, r.devices, id)
}

func (r *MongoCatalogRepo) CreateFault(ctx context.Context, f *models.Fault) error {
	return insertOne(ctx, r.faults, f)
}

func (r *MongoCatalogRepo) DeactivateFault(ctx context.Context, id string) error {
	return updateByID(ctx, r.faults, id, bson.M{"is_active": false})
}

func (r *MongoCatalogRepo) UpdateDurationCharge(ctx context.Context, id string, extraCharge float64) error {
	return updateByID(ctx, r.durationTypes, id, bson.M{"extra_charge": extraCharge, "updated_at": time.Now()})
}
