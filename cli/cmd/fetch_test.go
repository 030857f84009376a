package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-crawler"
	"github.com/malusev998/currency-crawler/filter"
	"github.com/malusev998/currency-crawler/services"
)

const feed = "幣別,匯率,現金,即期,遠期10天,遠期30天,遠期60天,遠期90天,遠期120天,遠期150天,遠期180天,匯率,現金,即期\n" +
	"USD,本行買入,31.9,32.2,0,0,0,0,0,0,0,本行賣出,31.50,32.3\n" +
	"EUR,本行買入,34.0,34.5,0,0,0,0,0,0,0,本行賣出,34.2,34.9\n" +
	"XAU,本行買入,1,1,0,0,0,0,0,0,0,本行賣出,2000,2001\n"

func TestFetchCommand(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	t.Run("PrintsDone", func(t *testing.T) {
		calls := 0
		config := &Config{
			Logger: zerolog.Nop(),
			NewService: func() (currency.Service, error) {
				return serviceFunc(func(ctx context.Context) (map[string][]currency.Rate, error) {
					calls++
					return map[string][]currency.Rate{"memory": {{Currency: "USD", Rate: 31.5}}}, nil
				}), nil
			},
		}

		out := &bytes.Buffer{}
		cmd := fetch(config)
		cmd.SetOut(out)
		cmd.SetArgs([]string{})

		asserts.NoError(cmd.Execute())
		asserts.Equal("Done!\n", out.String())
		asserts.Equal(1, calls)
	})

	t.Run("ReturnsStageError", func(t *testing.T) {
		config := &Config{
			Logger: zerolog.Nop(),
			NewService: func() (currency.Service, error) {
				return serviceFunc(func(ctx context.Context) (map[string][]currency.Rate, error) {
					return nil, &currency.StageError{Stage: currency.StageFetch, Err: errors.New("connection refused")}
				}), nil
			},
		}

		out := &bytes.Buffer{}
		cmd := fetch(config)
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{})

		asserts.EqualError(cmd.Execute(), "fetch stage: connection refused")
		asserts.Empty(out.String())
	})

	t.Run("ProviderFlagOverridesSettings", func(t *testing.T) {
		config := &Config{
			Logger:   zerolog.Nop(),
			Settings: &Settings{Provider: currency.BankOfTaiwanProvider, FeedFile: "/data/feed.csv"},
		}
		config.NewService = func() (currency.Service, error) {
			provider := config.Settings.Provider

			return serviceFunc(func(ctx context.Context) (map[string][]currency.Rate, error) {
				if provider != currency.FileProvider {
					return nil, errors.New("unexpected provider " + provider.String())
				}

				return map[string][]currency.Rate{}, nil
			}), nil
		}

		cmd := fetch(config)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--provider", "file"})

		asserts.NoError(cmd.Execute())
		asserts.Equal(currency.FileProvider, config.Settings.Provider)

		cmd = fetch(config)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--provider", "yahoo"})

		asserts.Error(cmd.Execute())
	})

	t.Run("FileProviderFlagNeedsFeedFile", func(t *testing.T) {
		called := false
		config := &Config{
			Logger:   zerolog.Nop(),
			Settings: &Settings{Provider: currency.BankOfTaiwanProvider},
			NewService: func() (currency.Service, error) {
				called = true
				return nil, errors.New("service must not be built")
			},
		}

		cmd := fetch(config)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--provider", "file"})

		err := cmd.Execute()

		var stageErr *currency.StageError
		asserts.True(errors.As(err, &stageErr))
		asserts.Equal(currency.StageConfig, stageErr.Stage)
		asserts.False(called)
		asserts.Equal(currency.BankOfTaiwanProvider, config.Settings.Provider)
	})

	t.Run("StandaloneStopsOnCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		config := &Config{
			Logger: zerolog.Nop(),
			NewService: func() (currency.Service, error) {
				return serviceFunc(func(ctx context.Context) (map[string][]currency.Rate, error) {
					calls++
					return map[string][]currency.Rate{}, nil
				}), nil
			},
		}

		out := &bytes.Buffer{}
		cmd := fetch(config)
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--standalone", "--after", "1h"})

		asserts.NoError(cmd.ExecuteContext(ctx))
		asserts.Equal("Done!\n", out.String())
		asserts.Equal(1, calls)
	})
}

func TestFetchCommand_FileFeed(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fs := afero.NewMemMapFs()

	asserts.NoError(afero.WriteFile(fs, "/data/feed.csv", []byte(feed), 0o644))
	asserts.NoError(afero.WriteFile(fs, "/data/currency.txt", []byte("USD\nEUR\n"), 0o644))

	settings := &Settings{
		Provider:     currency.FileProvider,
		FeedFile:     "/data/feed.csv",
		CurrencyFile: "/data/currency.txt",
	}

	st := newMemoryStorage(currency.Rate{Currency: "GBP", Rate: 40})

	config := &Config{
		Fs:     fs,
		Logger: zerolog.Nop(),
		NewService: func() (currency.Service, error) {
			fetcher, err := createFetcher(settings, fs)

			if err != nil {
				return nil, err
			}

			return services.Service{
				Fetcher:  fetcher,
				Accepted: filter.FileLoader{Fs: fs, Path: filter.ResolvePath(fs, settings.CurrencyFile)},
				Storage:  []currency.Storage{st},
				Logger:   zerolog.Nop(),
			}, nil
		},
	}

	cmd := fetch(config)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	asserts.NoError(cmd.Execute())

	stored, err := st.GetAll(context.Background())

	asserts.NoError(err)
	asserts.Len(stored, 2)
	asserts.Equal("EUR", stored[0].Currency)
	asserts.Equal(34.2, stored[0].Rate)
	asserts.Equal("USD", stored[1].Currency)
	asserts.Equal(31.5, stored[1].Rate)
	asserts.Equal(1, st.closed)
}

func TestRootCommand(t *testing.T) {
	asserts := require.New(t)
	t.Setenv("DB_SOURCE", "")

	fs := afero.NewMemMapFs()
	asserts.NoError(afero.WriteFile(fs, "/etc/crawler.yml", []byte("storage: [redis]\n"), 0o644))

	st := newMemoryStorage(currency.Rate{Currency: "USD", Rate: 32})
	config := &Config{
		Ctx: context.Background(),
		Fs:  fs,
		NewStorage: func() ([]currency.Storage, error) {
			return []currency.Storage{st}, nil
		},
	}

	out := &bytes.Buffer{}
	root := newRootCmd(config)
	root.SetOut(out)
	root.SetArgs([]string{"--config", "/etc/crawler.yml", "convert", "usd", "twd", "2"})

	asserts.NoError(root.ExecuteContext(config.Ctx))
	asserts.Equal("2 USD = 64 TWD\n", out.String())
	asserts.NotNil(config.Settings)
	asserts.Equal("TWD", config.Settings.BaseCurrency)
	asserts.NotNil(config.NewService)
	asserts.True(strings.Contains(config.Settings.FeedURL, "rate.bot.com.tw"))
}
