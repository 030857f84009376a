package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	currency "github.com/malusev998/currency-crawler"
	"github.com/malusev998/currency-crawler/fetchers"
	"github.com/malusev998/currency-crawler/filter"
	"github.com/malusev998/currency-crawler/services"
	"github.com/malusev998/currency-crawler/storage"
)

func createFetcher(settings *Settings, fs afero.Fs) (currency.Fetcher, error) {
	var config interface{}

	switch settings.Provider {
	case currency.BankOfTaiwanProvider:
		config = fetchers.BankOfTaiwanConfig{URL: settings.FeedURL, Timeout: settings.HTTPTimeout}
	case currency.FileProvider:
		config = fetchers.FileConfig{Fs: fs, Path: settings.FeedFile}
	}

	fetcher := fetchers.NewCurrencyFetcher(settings.Provider, config)

	if fetcher == nil {
		return nil, fmt.Errorf("fetcher %s does not exist", settings.Provider)
	}

	return fetcher, nil
}

func createStorages(settings *Settings) ([]currency.Storage, error) {
	storages := make([]currency.Storage, 0, len(settings.Storage))

	for _, s := range settings.Storage {
		c, ok := settings.StorageConfig[s]

		if !ok {
			return nil, configError(fmt.Errorf("storage %s does not exist", s))
		}

		st, err := storage.NewStorage(s, c)

		if err != nil {
			return nil, configError(err)
		}

		storages = append(storages, st)
	}

	return storages, nil
}

func createService(settings *Settings, fs afero.Fs, logger zerolog.Logger) (currency.Service, error) {
	fetcher, err := createFetcher(settings, fs)

	if err != nil {
		return nil, configError(err)
	}

	storages, err := createStorages(settings)

	if err != nil {
		return nil, err
	}

	return services.Service{
		Fetcher: fetcher,
		Accepted: filter.FileLoader{
			Fs:   fs,
			Path: filter.ResolvePath(fs, settings.CurrencyFile),
		},
		Storage: storages,
		Logger:  logger,
	}, nil
}
