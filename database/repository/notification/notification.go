package notificationRepo

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

// ErrNotFound is returned when no notification matches.
var ErrNotFound = errors.New("notification not found")

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	// MarkRead marks the user's notification read. A notification owned by
	// someone else is reported as ErrNotFound.
	MarkRead(ctx context.Context, userID, id string) error
	// Create stores n unless a notification with the same id exists; an
	// existing one is left as it is, read flag included.
	Create(ctx context.Context, n *models.Notification) error
}

type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) NotificationRepository {
	return &MongoNotificationRepo{coll: db.Collection("notifications")}
}

func (r *MongoNotificationRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)
	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"id": id, "user_id": userID}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to update notification %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": n.ID}, bson.M{"$setOnInsert": n}, opts); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique id index that makes Create idempotent and
// the inbox listing index.
func (r *MongoNotificationRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}
