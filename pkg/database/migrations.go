package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"handicapper/pkg/logger"
)

const migrationsCollection = "migrations"

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

// Migrator applies index migrations in version order and records the last
// applied version in the migrations collection.
type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: Migrations(),
		logger:     log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= current {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if err := m.setVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) currentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}

	return result.Version, nil
}

func (m *Migrator) setVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Migrations lists index migrations. The review pair index is deliberately
// not unique: one review per pair is kept by the service.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users indexes",
			Up: indexes(CollectionUsers,
				mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "is_handicapper_pro", Value: 1}, {Key: "win_rate", Value: -1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "user_type", Value: 1}}},
			),
		},
		{
			Version:     2,
			Description: "Create reviews indexes",
			Up: indexes(CollectionReviews,
				mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "handicapper_id", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "handicapper_id", Value: 1}, {Key: "created_at", Value: -1}}},
			),
		},
		{
			Version:     3,
			Description: "Create picks indexes",
			Up: indexes(CollectionPicks,
				mongo.IndexModel{Keys: bson.D{{Key: "handicapper_id", Value: 1}, {Key: "created_at", Value: -1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "sport", Value: 1}, {Key: "created_at", Value: -1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}},
			),
		},
		{
			Version:     4,
			Description: "Create pick interaction indexes",
			Up: indexes(CollectionPickInteractions,
				mongo.IndexModel{Keys: bson.D{{Key: "pick_id", Value: 1}, {Key: "type", Value: 1}}},
			),
		},
		{
			Version:     5,
			Description: "Create transactions indexes",
			Up: indexes(CollectionTransactions,
				mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "handicapper_id", Value: 1}, {Key: "status", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "handicapper_id", Value: 1}, {Key: "status", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
			),
		},
		{
			Version:     6,
			Description: "Create subscriptions indexes",
			Up: indexes(CollectionSubscriptions,
				mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_date", Value: 1}}},
			),
		},
		{
			Version:     7,
			Description: "Create following indexes",
			Up: indexes(CollectionFollowing,
				mongo.IndexModel{
					Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
				mongo.IndexModel{Keys: bson.D{{Key: "following_id", Value: 1}}},
			),
		},
		{
			Version:     8,
			Description: "Create notification token indexes",
			Up: indexes(CollectionNotificationTokens,
				mongo.IndexModel{
					Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "device_id", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
			),
		},
		{
			Version:     9,
			Description: "Create analytics and chat indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				if err := indexes(CollectionAnalyticsEvents,
					mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: -1}}},
				)(ctx, db); err != nil {
					return err
				}
				return indexes(CollectionChatMessages,
					mongo.IndexModel{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}}},
					mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}},
					mongo.IndexModel{Keys: bson.D{{Key: "handicapper_id", Value: 1}}},
				)(ctx, db)
			},
		},
		{
			Version:     10,
			Description: "Create unique pick like index",
			Up:          indexes(CollectionPickInteractions, uniqueLikeIndex()),
		},
	}
}

// uniqueLikeIndex allows one like per user and pick. Shares and purchases
// may repeat.
func uniqueLikeIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "pick_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"type": "like"}),
	}
}

func indexes(collection string, models ...mongo.IndexModel) func(context.Context, *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
		return nil
	}
}
