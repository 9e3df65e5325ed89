package mongo

import (
	"context"
	"fmt"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ domain.Transactor = (*Transactor)(nil)

// Transactor runs units of work in a multi-document transaction. The deployment
// must be a replica set or sharded cluster.
type Transactor struct {
	client *mongo.Client
}

func NewTransactor(client *mongo.Client) *Transactor {
	return &Transactor{client: client}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// versionConflict distinguishes a stale version from a missing document after a
// versioned update matched nothing.
func versionConflict(ctx context.Context, collection *mongo.Collection, filter bson.D, label string) error {
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("check %s existence: %w", collection.Name(), err)
	}
	if count == 0 {
		return domain.ErrRecordNotFound
	}
	return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, label)
}
