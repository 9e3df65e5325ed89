package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ domain.AccountRepository = (*AccountRepository)(nil)

type accountDocument struct {
	ID            string               `bson:"_id"`
	AccountNumber string               `bson:"accountNumber"`
	HolderName    string               `bson:"holderName"`
	Balance       primitive.Decimal128 `bson:"balance"`
	Status        string               `bson:"status"`
	Version       int64                `bson:"version"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

type AccountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{collection: db.Collection(accountsCollection)}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"accountNumber": account.AccountNumber,
	})

	if account.Version == 0 {
		account.Version = 1
	}
	doc, err := newAccountDocument(account)
	if err != nil {
		return domain.Account{}, err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Account{}, fmt.Errorf("%w: account number %s", domain.ErrDuplicateKey, account.AccountNumber)
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	var doc accountDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "accountNumber", Value: accountNumber}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.Info("account repository record not found", logger.Fields{
				"accountNumber": accountNumber,
			})
			return domain.Account{}, domain.ErrRecordNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}
	return doc.toDomain()
}

func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.D{{Key: "accountNumber", Value: accountNumber}})
	if err != nil {
		logger.Error("account repository exists failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return false, fmt.Errorf("check account number: %w", err)
	}
	return count > 0, nil
}

func (r *AccountRepository) Update(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository update", logger.Fields{
		"accountNumber": account.AccountNumber,
		"version":       account.Version,
	})

	balance, err := toDecimal128(account.Balance)
	if err != nil {
		return domain.Account{}, err
	}

	next := account
	next.Version = account.Version + 1
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now().UTC()
	}

	filter := bson.D{
		{Key: "accountNumber", Value: account.AccountNumber},
		{Key: "version", Value: account.Version},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "holderName", Value: account.HolderName},
		{Key: "balance", Value: balance},
		{Key: "status", Value: string(account.Status)},
		{Key: "version", Value: next.Version},
		{Key: "updatedAt", Value: next.UpdatedAt},
	}}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Error("account repository update failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.Account{}, versionConflict(ctx, r.collection,
			bson.D{{Key: "accountNumber", Value: account.AccountNumber}}, "account "+account.AccountNumber)
	}

	return next, nil
}

func newAccountDocument(account domain.Account) (accountDocument, error) {
	balance, err := toDecimal128(account.Balance)
	if err != nil {
		return accountDocument{}, err
	}
	return accountDocument{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		HolderName:    account.HolderName,
		Balance:       balance,
		Status:        string(account.Status),
		Version:       account.Version,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}, nil
}

func (d accountDocument) toDomain() (domain.Account, error) {
	balance, err := fromDecimal128(d.Balance)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{
		ID:            d.ID,
		AccountNumber: d.AccountNumber,
		HolderName:    d.HolderName,
		Balance:       balance,
		Status:        domain.AccountStatus(d.Status),
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}
