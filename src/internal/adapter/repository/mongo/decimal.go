package mongo

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func toDecimal128(value decimal.Decimal) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(value.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", value.String(), err)
	}
	return d, nil
}

func fromDecimal128(value primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode decimal %s: %w", value.String(), err)
	}
	return d, nil
}

func toOptionalDecimal128(value *decimal.Decimal) (*primitive.Decimal128, error) {
	if value == nil {
		return nil, nil
	}
	d, err := toDecimal128(*value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func fromOptionalDecimal128(value *primitive.Decimal128) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := fromDecimal128(*value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
