package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	currency "github.com/malusev998/currency-crawler"
)

// DefaultBaseCurrency is the currency the Bank of Taiwan quotes every rate in.
const DefaultBaseCurrency = "TWD"

var ErrInvalidRate = errors.New("rate of the target currency is zero")

type ConversionService struct {
	Storages     []currency.Storage
	BaseCurrency string
}

func (c ConversionService) Convert(ctx context.Context, from, to string, value float64) (float64, error) {
	if len(c.Storages) == 0 {
		return 0.0, ErrNoStorageProvided
	}

	fromRate, err := c.rate(ctx, from)

	if err != nil {
		return 0.0, err
	}

	toRate, err := c.rate(ctx, to)

	if err != nil {
		return 0.0, err
	}

	if toRate.IsZero() {
		return 0.0, ErrInvalidRate
	}

	return convert(decimal.NewFromFloat(value), fromRate, toRate), nil
}

// rate asks every storage in order and uses the first one holding the code.
func (c ConversionService) rate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	base := c.BaseCurrency

	if base == "" {
		base = DefaultBaseCurrency
	}

	if code == base {
		return decimal.NewFromInt(1), nil
	}

	for _, storage := range c.Storages {
		rate, err := storage.Get(ctx, code)

		if errors.Is(err, currency.ErrCurrencyNotFound) {
			continue
		}

		if err != nil {
			return decimal.Zero, err
		}

		return decimal.NewFromFloat(rate.Rate), nil
	}

	return decimal.Zero, fmt.Errorf("%w: %s", currency.ErrCurrencyNotFound, code)
}

func convert(value, from, to decimal.Decimal) float64 {
	result, _ := value.Mul(from).Div(to).Round(6).Float64()

	return result
}
