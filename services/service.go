package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	currency "github.com/malusev998/currency-crawler"
	"github.com/malusev998/currency-crawler/filter"
	"github.com/malusev998/currency-crawler/parser"
)

var ErrNoStorageProvided = errors.New("no storage provided")

type (
	AcceptedLoader interface {
		Load() (filter.Set, error)
	}

	// Service runs the crawl once: accepted set, feed, parse, then every
	// storage in order. A storage is closed as soon as its stage is over.
	Service struct {
		Fetcher  currency.Fetcher
		Accepted AcceptedLoader
		Storage  []currency.Storage
		Logger   zerolog.Logger
	}
)

func saveToStorage(ctx context.Context, storage currency.Storage, rates []currency.Rate) (stored []currency.Rate, err error) {
	defer func() {
		closeErr := storage.Close(context.WithoutCancel(ctx))

		if err == nil && closeErr != nil {
			stored, err = nil, closeErr
		}
	}()

	return storage.Store(ctx, rates)
}

// closeStorages releases storages that will not run their stage.
func closeStorages(ctx context.Context, logger zerolog.Logger, storages []currency.Storage) {
	for _, storage := range storages {
		if err := storage.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Str("storage", storage.GetStorageProviderName()).Msg("cannot close storage")
		}
	}
}

func (f Service) parse(logger zerolog.Logger, text string, accepted filter.Set) []currency.Rate {
	results := parser.ParseLines(text, accepted)
	rates := make([]currency.Rate, 0, len(results))
	skipped := 0

	for _, result := range results {
		if result.Skipped() {
			skipped++
			logger.Debug().Int("line", result.Number).Stringer("reason", result.Skip).Msg("line skipped")

			continue
		}

		rates = append(rates, result.Rate)
	}

	logger.Info().
		Int("lines", len(results)).
		Int("rates", len(rates)).
		Int("skipped", skipped).
		Msg("feed parsed")

	return rates
}

func (f Service) Save(ctx context.Context) (map[string][]currency.Rate, error) {
	if len(f.Storage) == 0 {
		return nil, &currency.StageError{Stage: currency.StageConfig, Err: ErrNoStorageProvided}
	}

	logger := f.Logger.With().Str("run_id", uuid.NewString()).Logger()

	accepted, err := f.Accepted.Load()

	if err != nil {
		closeStorages(ctx, logger, f.Storage)
		return nil, &currency.StageError{Stage: currency.StageFilter, Err: err}
	}

	logger.Debug().Int("accepted", accepted.Len()).Msg("accepted currencies loaded")

	text, err := f.Fetcher.Fetch(ctx)

	if err != nil {
		closeStorages(ctx, logger, f.Storage)
		return nil, &currency.StageError{Stage: currency.StageFetch, Err: err}
	}

	rates := f.parse(logger, text, accepted)
	data := make(map[string][]currency.Rate, len(f.Storage))

	for i, storage := range f.Storage {
		name := storage.GetStorageProviderName()
		stored, err := saveToStorage(ctx, storage, rates)

		if err != nil {
			closeStorages(ctx, logger, f.Storage[i+1:])
			return nil, &currency.StageError{Stage: currency.StageStore, Storage: name, Err: err}
		}

		logger.Info().Str("storage", name).Int("rows", len(stored)).Msg("rates stored")
		data[name] = stored
	}

	return data, nil
}
