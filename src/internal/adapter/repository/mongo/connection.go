package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection     = "accounts"
	transactionsCollection = "transactions"
	loansCollection        = "loans"
	usersCollection        = "users"

	defaultServerSelectionTimeout = 5 * time.Second
	defaultMaxPoolSize            = 50
)

// Open connects to uri and verifies the deployment answers a ping.
func Open(ctx context.Context, uri string, database string) (*mongo.Client, *mongo.Database, error) {
	if database == "" {
		return nil, nil, errors.New("mongo database name is required")
	}

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(defaultServerSelectionTimeout).
		SetMaxPoolSize(defaultMaxPoolSize)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			logger.Error("mongo disconnect after ping failure failed", disconnectErr, nil)
		}
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(database), nil
}

// EnsureIndexes creates the unique and lookup indexes every repository relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		accountsCollection: {
			{Keys: bson.D{{Key: "accountNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "sourceAccount", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "destinationAccount", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		loansCollection: {
			{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	var indexErrors []error
	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			logger.Warn("mongo create indexes failed", logger.Fields{
				"collection": collection,
				"reason":     err.Error(),
			})
			indexErrors = append(indexErrors, fmt.Errorf("create indexes on %s: %w", collection, err))
		}
	}
	return errors.Join(indexErrors...)
}
