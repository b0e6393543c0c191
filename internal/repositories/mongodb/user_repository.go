package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/database"
)

const userCacheTTL = 5 * time.Minute

type userRepository struct {
	collection *mongo.Collection
	cache      Cache
}

// NewUserRepository builds the users repository. cache may be nil.
func NewUserRepository(db *mongo.Database, cache Cache) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.CollectionUsers),
		cache:      cache,
	}
}

func userCacheKey(id string) string {
	return "user:" + id
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.cache != nil {
		var cached models.User
		if err := r.cache.Get(ctx, userCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Normalize()

	if r.cache != nil {
		_ = r.cache.Set(ctx, userCacheKey(id), &user, userCacheTTL)
	}

	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	users, err := decodeAll[models.User](ctx, cursor)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}

	return out, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	now := time.Now().UTC()
	user.Normalize()

	set := bson.M{
		"auth_provider": user.AuthProvider,
		"last_login_at": now,
		"updated_at":    now,
	}
	if user.Email != "" {
		set["email"] = user.Email
	}

	onInsert := bson.M{
		"username":            user.Username,
		"display_name":        user.DisplayName,
		"user_type":           user.UserType,
		"is_verified":         user.IsVerified,
		"is_handicapper_pro":  false,
		"win_rate":            0.0,
		"total_picks":         0,
		"followers":           0,
		"average_rating":      0.0,
		"total_reviews":       0,
		"rating_distribution": models.RatingDistribution{},
		"preferences":         user.Preferences,
		"created_at":          now,
	}
	if user.AvatarURL != "" {
		onInsert["avatar_url"] = user.AvatarURL
	}

	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}

	r.invalidate(ctx, user.ID)
	return result.UpsertedCount > 0, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, updates map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return notFound("user", id)
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return r.UpdateProfile(ctx, id, map[string]interface{}{"avatar_url": avatarURL})
}

func (r *userRepository) UpdateReviewStats(ctx context.Context, id string, stats models.ReviewStats) error {
	update := bson.M{
		"$set": bson.M{
			"average_rating":      stats.AverageRating,
			"total_reviews":       stats.TotalReviews,
			"rating_distribution": stats.RatingDistribution,
			"updated_at":          time.Now().UTC(),
		},
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to update review stats: %w", err)
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) UpdatePickStats(ctx context.Context, id string, totalPicks int, winRate float64) error {
	update := bson.M{
		"$set": bson.M{
			"total_picks": totalPicks,
			"win_rate":    winRate,
			"updated_at":  time.Now().UTC(),
		},
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to update pick stats: %w", err)
	}

	r.invalidate(ctx, id)
	return nil
}

// AdjustFollowers runs as a single pipeline update so the clamp at zero is
// applied server side.
func (r *userRepository) AdjustFollowers(ctx context.Context, id string, delta int) error {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$followers", 0}}}
	next := bson.D{{Key: "$max", Value: bson.A{0, bson.D{{Key: "$add", Value: bson.A{current, delta}}}}}}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "followers", Value: next},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to adjust follower count: %w", err)
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) ListHandicappers(ctx context.Context, query interfaces.HandicapperQuery) ([]*models.User, error) {
	clauses := bson.A{}

	if query.ProOnly {
		clauses = append(clauses, bson.M{"is_handicapper_pro": true})
	} else {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"user_type": models.UserTypeHandicapper},
			bson.M{"is_handicapper_pro": true},
		}})
	}

	if query.Search != "" {
		pattern := primitiveRegex(query.Search)
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"display_name": pattern},
		}})
	}
	if query.Sport != "" {
		clauses = append(clauses, bson.M{"preferences.sports": query.Sport})
	}
	if len(query.Exclude) > 0 {
		clauses = append(clauses, bson.M{"_id": bson.M{"$nin": query.Exclude}})
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "win_rate", Value: -1},
		{Key: "followers", Value: -1},
	})
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"$and": clauses}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list handicappers: %w", err)
	}

	return decodeAll[models.User](ctx, cursor)
}

func (r *userRepository) invalidate(ctx context.Context, id string) {
	if r.cache != nil {
		_ = r.cache.Delete(ctx, userCacheKey(id))
	}
}

func primitiveRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
