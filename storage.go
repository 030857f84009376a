package currency

import (
	"context"
	"errors"
)

var ErrCurrencyNotFound = errors.New("rate for the currency is not found in storage")

type Storage interface {
	// Store replaces the whole content of the storage with rates.
	Store(ctx context.Context, rates []Rate) ([]Rate, error)
	Get(ctx context.Context, currency string) (Rate, error)
	GetAll(ctx context.Context) ([]Rate, error)
	Drop(ctx context.Context) error
	Close(ctx context.Context) error
	GetStorageProviderName() string
}
