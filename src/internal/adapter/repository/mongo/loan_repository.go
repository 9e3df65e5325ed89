package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ domain.LoanRepository = (*LoanRepository)(nil)

type financialsDocument struct {
	Revenue *primitive.Decimal128 `bson:"revenue,omitempty"`
	EBITDA  *primitive.Decimal128 `bson:"ebitda,omitempty"`
	Rating  string                `bson:"rating,omitempty"`
}

type loanActionDocument struct {
	By        string    `bson:"by"`
	Action    string    `bson:"action"`
	Comments  string    `bson:"comments,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

type loanDocument struct {
	ID                   string                `bson:"_id"`
	ClientName           string                `bson:"clientName"`
	LoanType             string                `bson:"loanType"`
	RequestedAmount      primitive.Decimal128  `bson:"requestedAmount"`
	ProposedInterestRate primitive.Decimal128  `bson:"proposedInterestRate"`
	TenureMonths         int                   `bson:"tenureMonths"`
	Financials           *financialsDocument   `bson:"financials,omitempty"`
	Status               string                `bson:"status"`
	SanctionedAmount     *primitive.Decimal128 `bson:"sanctionedAmount,omitempty"`
	ApprovedInterestRate *primitive.Decimal128 `bson:"approvedInterestRate,omitempty"`
	CreatedBy            string                `bson:"createdBy"`
	UpdatedBy            string                `bson:"updatedBy"`
	ApprovedBy           *string               `bson:"approvedBy,omitempty"`
	ApprovedAt           *time.Time            `bson:"approvedAt,omitempty"`
	Actions              []loanActionDocument  `bson:"actions"`
	Deleted              bool                  `bson:"deleted"`
	DeletedAt            *time.Time            `bson:"deletedAt,omitempty"`
	Version              int64                 `bson:"version"`
	CreatedAt            time.Time             `bson:"createdAt"`
	UpdatedAt            time.Time             `bson:"updatedAt"`
}

type LoanRepository struct {
	collection *mongo.Collection
}

func NewLoanRepository(db *mongo.Database) *LoanRepository {
	return &LoanRepository{collection: db.Collection(loansCollection)}
}

func (r *LoanRepository) Create(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	logger.Info("loan repository create", logger.Fields{
		"loanId":     loan.ID,
		"clientName": loan.ClientName,
	})

	if loan.Version == 0 {
		loan.Version = 1
	}
	doc, err := newLoanDocument(loan)
	if err != nil {
		return domain.Loan{}, err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Loan{}, fmt.Errorf("%w: loan %s", domain.ErrDuplicateKey, loan.ID)
		}
		logger.Error("loan repository create failed", err, logger.Fields{"loanId": loan.ID})
		return domain.Loan{}, fmt.Errorf("create loan: %w", err)
	}
	return loan, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (domain.Loan, error) {
	var doc loanDocument
	if err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.Info("loan repository record not found", logger.Fields{"loanId": id})
			return domain.Loan{}, domain.ErrRecordNotFound
		}
		logger.Error("loan repository get failed", err, logger.Fields{"loanId": id})
		return domain.Loan{}, fmt.Errorf("get loan by id: %w", err)
	}
	return doc.toDomain()
}

// Update replaces the whole document when the stored version matches.
func (r *LoanRepository) Update(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	logger.Info("loan repository update", logger.Fields{
		"loanId":  loan.ID,
		"version": loan.Version,
	})

	next := loan
	next.Version = loan.Version + 1
	doc, err := newLoanDocument(next)
	if err != nil {
		return domain.Loan{}, err
	}

	filter := bson.D{{Key: "_id", Value: loan.ID}, {Key: "version", Value: loan.Version}}
	result, err := r.collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		logger.Error("loan repository update failed", err, logger.Fields{"loanId": loan.ID})
		return domain.Loan{}, fmt.Errorf("update loan: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.Loan{}, versionConflict(ctx, r.collection, bson.D{{Key: "_id", Value: loan.ID}}, "loan "+loan.ID)
	}
	return next, nil
}

func (r *LoanRepository) List(ctx context.Context, filter domain.LoanFilter, page domain.PageRequest) (domain.Page[domain.Loan], error) {
	query := loanQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		logger.Error("loan repository count failed", err, nil)
		return domain.Page[domain.Loan]{}, fmt.Errorf("count loans: %w", err)
	}

	direction := -1
	if page.Direction == domain.SortAsc {
		direction = 1
	}
	sortBy := page.SortBy
	if _, ok := domain.LoanSortFields[sortBy]; !ok {
		sortBy = domain.DefaultSortBy
	}
	sort := bson.D{{Key: sortBy, Value: direction}}
	if sortBy != "createdAt" {
		sort = append(sort, bson.E{Key: "createdAt", Value: direction})
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		logger.Error("loan repository list failed", err, nil)
		return domain.Page[domain.Loan]{}, fmt.Errorf("list loans: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []loanDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return domain.Page[domain.Loan]{}, fmt.Errorf("decode loans: %w", err)
	}

	items := make([]domain.Loan, 0, len(docs))
	for _, d := range docs {
		loan, err := d.toDomain()
		if err != nil {
			return domain.Page[domain.Loan]{}, err
		}
		items = append(items, loan)
	}
	return domain.NewPage(items, page, total), nil
}

func loanQuery(filter domain.LoanFilter) bson.D {
	query := bson.D{}
	if !filter.IncludeDeleted {
		query = append(query, bson.E{Key: "deleted", Value: false})
	}
	if filter.Status != nil {
		query = append(query, bson.E{Key: "status", Value: string(*filter.Status)})
	}
	if filter.ClientName != "" {
		query = append(query, bson.E{Key: "clientName", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.ClientName),
			Options: "i",
		}})
	}
	if filter.LoanType != "" {
		query = append(query, bson.E{Key: "loanType", Value: filter.LoanType})
	}
	return query
}

func newLoanDocument(loan domain.Loan) (loanDocument, error) {
	requested, err := toDecimal128(loan.RequestedAmount)
	if err != nil {
		return loanDocument{}, err
	}
	proposed, err := toDecimal128(loan.ProposedInterestRate)
	if err != nil {
		return loanDocument{}, err
	}
	sanctioned, err := toOptionalDecimal128(loan.SanctionedAmount)
	if err != nil {
		return loanDocument{}, err
	}
	approvedRate, err := toOptionalDecimal128(loan.ApprovedInterestRate)
	if err != nil {
		return loanDocument{}, err
	}

	var financials *financialsDocument
	if loan.Financials != nil {
		revenue, err := toOptionalDecimal128(loan.Financials.Revenue)
		if err != nil {
			return loanDocument{}, err
		}
		ebitda, err := toOptionalDecimal128(loan.Financials.EBITDA)
		if err != nil {
			return loanDocument{}, err
		}
		financials = &financialsDocument{Revenue: revenue, EBITDA: ebitda, Rating: loan.Financials.Rating}
	}

	actions := make([]loanActionDocument, 0, len(loan.Actions))
	for _, a := range loan.Actions {
		actions = append(actions, loanActionDocument{By: a.By, Action: a.Action, Comments: a.Comments, Timestamp: a.Timestamp})
	}

	return loanDocument{
		ID:                   loan.ID,
		ClientName:           loan.ClientName,
		LoanType:             loan.LoanType,
		RequestedAmount:      requested,
		ProposedInterestRate: proposed,
		TenureMonths:         loan.TenureMonths,
		Financials:           financials,
		Status:               string(loan.Status),
		SanctionedAmount:     sanctioned,
		ApprovedInterestRate: approvedRate,
		CreatedBy:            loan.CreatedBy,
		UpdatedBy:            loan.UpdatedBy,
		ApprovedBy:           loan.ApprovedBy,
		ApprovedAt:           loan.ApprovedAt,
		Actions:              actions,
		Deleted:              loan.Deleted,
		DeletedAt:            loan.DeletedAt,
		Version:              loan.Version,
		CreatedAt:            loan.CreatedAt,
		UpdatedAt:            loan.UpdatedAt,
	}, nil
}

func (d loanDocument) toDomain() (domain.Loan, error) {
	requested, err := fromDecimal128(d.RequestedAmount)
	if err != nil {
		return domain.Loan{}, err
	}
	proposed, err := fromDecimal128(d.ProposedInterestRate)
	if err != nil {
		return domain.Loan{}, err
	}
	sanctioned, err := fromOptionalDecimal128(d.SanctionedAmount)
	if err != nil {
		return domain.Loan{}, err
	}
	approvedRate, err := fromOptionalDecimal128(d.ApprovedInterestRate)
	if err != nil {
		return domain.Loan{}, err
	}

	var financials *domain.Financials
	if d.Financials != nil {
		revenue, err := fromOptionalDecimal128(d.Financials.Revenue)
		if err != nil {
			return domain.Loan{}, err
		}
		ebitda, err := fromOptionalDecimal128(d.Financials.EBITDA)
		if err != nil {
			return domain.Loan{}, err
		}
		financials = &domain.Financials{Revenue: revenue, EBITDA: ebitda, Rating: d.Financials.Rating}
	}

	actions := make([]domain.LoanAction, 0, len(d.Actions))
	for _, a := range d.Actions {
		actions = append(actions, domain.LoanAction{By: a.By, Action: a.Action, Comments: a.Comments, Timestamp: a.Timestamp})
	}

	return domain.Loan{
		ID:                   d.ID,
		ClientName:           d.ClientName,
		LoanType:             d.LoanType,
		RequestedAmount:      requested,
		ProposedInterestRate: proposed,
		TenureMonths:         d.TenureMonths,
		Financials:           financials,
		Status:               domain.LoanStatus(d.Status),
		SanctionedAmount:     sanctioned,
		ApprovedInterestRate: approvedRate,
		CreatedBy:            d.CreatedBy,
		UpdatedBy:            d.UpdatedBy,
		ApprovedBy:           d.ApprovedBy,
		ApprovedAt:           d.ApprovedAt,
		Actions:              actions,
		Deleted:              d.Deleted,
		DeletedAt:            d.DeletedAt,
		Version:              d.Version,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}, nil
}
