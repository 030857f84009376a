package fetchers

import (
	"net/http"
	"time"

	"github.com/spf13/afero"

	currency "github.com/malusev998/currency-crawler"
)

type (
	BankOfTaiwanConfig struct {
		URL     string
		Timeout time.Duration
	}
	FileConfig struct {
		Fs   afero.Fs
		Path string
	}
)

func NewCurrencyFetcher(provider currency.Provider, config interface{}) currency.Fetcher {
	switch provider {
	case currency.BankOfTaiwanProvider:
		c := config.(BankOfTaiwanConfig)

		return BankOfTaiwanFetcher{
			URL:    c.URL,
			Client: &http.Client{Timeout: c.Timeout},
		}
	case currency.FileProvider:
		c := config.(FileConfig)

		return FileFetcher{
			Fs:   c.Fs,
			Path: c.Path,
		}
	}

	return nil
}
