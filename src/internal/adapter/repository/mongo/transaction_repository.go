package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

type transactionDocument struct {
	ID                 string               `bson:"_id"`
	Reference          string               `bson:"reference"`
	Type               string               `bson:"type"`
	Amount             primitive.Decimal128 `bson:"amount"`
	Status             string               `bson:"status"`
	SourceAccount      *string              `bson:"sourceAccount,omitempty"`
	DestinationAccount *string              `bson:"destinationAccount,omitempty"`
	Timestamp          time.Time            `bson:"timestamp"`
}

type TransactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{collection: db.Collection(transactionsCollection)}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository create", logger.Fields{
		"reference": transaction.Reference,
		"type":      transaction.Type,
		"status":    transaction.Status,
	})

	amount, err := toDecimal128(transaction.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	doc := transactionDocument{
		ID:                 transaction.ID,
		Reference:          transaction.Reference,
		Type:               string(transaction.Type),
		Amount:             amount,
		Status:             string(transaction.Status),
		SourceAccount:      transaction.SourceAccount,
		DestinationAccount: transaction.DestinationAccount,
		Timestamp:          transaction.Timestamp,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Transaction{}, fmt.Errorf("%w: transaction reference %s", domain.ErrDuplicateKey, transaction.Reference)
		}
		logger.Error("transaction repository create failed", err, logger.Fields{
			"reference": transaction.Reference,
		})
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	return transaction, nil
}

// ListByAccountNumber orders by timestamp then reference; references embed a
// process-wide counter, which keeps same-instant records in insertion order.
func (r *TransactionRepository) ListByAccountNumber(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "sourceAccount", Value: accountNumber}},
		bson.D{{Key: "destinationAccount", Value: accountNumber}},
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "reference", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Error("transaction repository list failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	transactions := make([]domain.Transaction, 0, len(docs))
	for _, d := range docs {
		amount, err := fromDecimal128(d.Amount)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, domain.Transaction{
			ID:                 d.ID,
			Reference:          d.Reference,
			Type:               domain.TransactionType(d.Type),
			Amount:             amount,
			Status:             domain.TransactionStatus(d.Status),
			SourceAccount:      d.SourceAccount,
			DestinationAccount: d.DestinationAccount,
			Timestamp:          d.Timestamp,
		})
	}
	return transactions, nil
}
