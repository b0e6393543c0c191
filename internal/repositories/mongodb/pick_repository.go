package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/database"
)

var pickCounters = map[string]bool{
	"likes":    true,
	"comments": true,
	"shares":   true,
}

type pickRepository struct {
	collection *mongo.Collection
}

func NewPickRepository(db *mongo.Database) interfaces.PickRepository {
	return &pickRepository{
		collection: db.Collection(database.CollectionPicks),
	}
}

func (r *pickRepository) Create(ctx context.Context, pick *models.Pick) error {
	if pick.ID.IsZero() {
		pick.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	pick.CreatedAt = now
	pick.UpdatedAt = now
	pick.Normalize()

	if _, err := r.collection.InsertOne(ctx, pick); err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}

	return nil
}

func (r *pickRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pick, error) {
	var pick models.Pick
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pick); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("pick", id.Hex())
		}
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}

	pick.Normalize()
	return &pick, nil
}

func (r *pickRepository) List(ctx context.Context, filter models.PickFilter) ([]*models.Pick, error) {
	query := bson.M{}
	if filter.HandicapperID != "" {
		query["handicapper_id"] = filter.HandicapperID
	}
	if filter.Sport != "" {
		query["sport"] = filter.Sport
	}
	if filter.IsPaid != nil {
		query["is_paid"] = *filter.IsPaid
	}
	if filter.IsFree != nil {
		query["is_free"] = *filter.IsFree
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	return r.find(ctx, query, filter.Limit)
}

func (r *pickRepository) ListByHandicappers(ctx context.Context, handicapperIDs []string, limit int) ([]*models.Pick, error) {
	if len(handicapperIDs) == 0 {
		return []*models.Pick{}, nil
	}
	return r.find(ctx, bson.M{"handicapper_id": bson.M{"$in": handicapperIDs}}, limit)
}

func (r *pickRepository) find(ctx context.Context, query bson.M, limit int) ([]*models.Pick, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks: %w", err)
	}

	return decodeAll[models.Pick](ctx, cursor)
}

func (r *pickRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PickStatus, result models.PickResult) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if result != "" {
		set["result"] = result
	} else {
		update["$unset"] = bson.M{"result": ""}
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update pick status: %w", err)
	}
	if res.MatchedCount == 0 {
		return notFound("pick", id.Hex())
	}

	return nil
}

func (r *pickRepository) SetCounter(ctx context.Context, id primitive.ObjectID, field string, value int64) error {
	if !pickCounters[field] {
		return fmt.Errorf("unknown pick counter %q", field)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("failed to update pick %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return notFound("pick", id.Hex())
	}

	return nil
}

func (r *pickRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pick: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound("pick", id.Hex())
	}

	return nil
}

type pickInteractionRepository struct {
	collection *mongo.Collection
}

func NewPickInteractionRepository(db *mongo.Database) interfaces.PickInteractionRepository {
	return &pickInteractionRepository{
		collection: db.Collection(database.CollectionPickInteractions),
	}
}

func (r *pickInteractionRepository) Create(ctx context.Context, interaction *models.PickInteraction) error {
	if interaction.ID.IsZero() {
		interaction.ID = primitive.NewObjectID()
	}
	interaction.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, interaction); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("interaction already recorded")
		}
		return fmt.Errorf("failed to create pick interaction: %w", err)
	}

	return nil
}

func (r *pickInteractionRepository) Count(ctx context.Context, pickID primitive.ObjectID, kind models.InteractionType) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"pick_id": pickID, "type": kind})
	if err != nil {
		return 0, fmt.Errorf("failed to count pick interactions: %w", err)
	}
	return n, nil
}

func (r *pickInteractionRepository) Exists(ctx context.Context, pickID primitive.ObjectID, userID string, kind models.InteractionType) (bool, error) {
	filter := bson.M{"pick_id": pickID, "user_id": userID, "type": kind}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check pick interaction: %w", err)
	}
	return n > 0, nil
}
