package agentRepo

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

// ErrNotFound is returned when no agent or application matches.
var ErrNotFound = errors.New("agent not found")

// MongoAgentRepo implements AgentRepository using MongoDB.
type MongoAgentRepo struct {
	coll *mongo.Collection
}

// NewMongoAgentRepo creates a new AgentRepository on the "agents" collection.
func NewMongoAgentRepo(db *mongo.Database) AgentRepository {
	return &MongoAgentRepo{coll: db.Collection("agents")}
}

func (r *MongoAgentRepo) FindEligible(ctx context.Context, cityID string) ([]models.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"city_id":   cityID,
		"status":    models.AgentStatusApproved,
		"is_online": true,
		"latitude":  bson.M{"$ne": nil},
		"longitude": bson.M{"$ne": nil},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("eligible agents query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var agents []models.Agent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("failed to decode agents: %w", err)
	}
	return agents, nil
}

func (r *MongoAgentRepo) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var agent models.Agent
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&agent); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch agent with id %s: %w", id, err)
	}
	return &agent, nil
}

func (r *MongoAgentRepo) Upsert(ctx context.Context, agent *models.Agent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	agent.UpdatedAt = time.Now()
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = agent.UpdatedAt
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"id": agent.ID}, agent, opts); err != nil {
		return fmt.Errorf("failed to upsert agent %s: %w", agent.ID, err)
	}
	return nil
}

func (r *MongoAgentRepo) SetOnline(ctx context.Context, id string, online bool) error {
	return r.update(ctx, id, bson.M{"is_online": online})
}

func (r *MongoAgentRepo) SetStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, id, bson.M{"status": status})
}

func (r *MongoAgentRepo) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	set["updated_at"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update agent %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoApplicationRepo implements ApplicationRepository using MongoDB.
type MongoApplicationRepo struct {
	coll *mongo.Collection
}

// NewMongoApplicationRepo creates a new ApplicationRepository on "agent_applications".
func NewMongoApplicationRepo(db *mongo.Database) ApplicationRepository {
	return &MongoApplicationRepo{coll: db.Collection("agent_applications")}
}

func (r *MongoApplicationRepo) ListByStatus(ctx context.Context, status string) ([]models.AgentApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)
	var apps []models.AgentApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

func (r *MongoApplicationRepo) GetByID(ctx context.Context, id string) (*models.AgentApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var app models.AgentApplication
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch application %s: %w", id, err)
	}
	return &app, nil
}

func (r *MongoApplicationRepo) SetStatus(ctx context.Context, id, status, notes string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{"status": status, "review_notes": notes, "reviewed_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update application %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
