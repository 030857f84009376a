package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	currency "github.com/malusev998/currency-crawler"
	"github.com/malusev998/currency-crawler/fetchers"
	"github.com/malusev998/currency-crawler/filter"
	"github.com/malusev998/currency-crawler/services"
	"github.com/malusev998/currency-crawler/storage"
)

type (
	StorageConfig map[storage.Provider]interface{}
	Settings      struct {
		Provider      currency.Provider
		FeedURL       string
		FeedFile      string
		HTTPTimeout   time.Duration
		CurrencyFile  string
		BaseCurrency  string
		Storage       []storage.Provider
		StorageConfig StorageConfig
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(currency.BankOfTaiwanProvider))
	v.SetDefault("feed_url", fetchers.BankOfTaiwanURL)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("currency_file", filter.DefaultPath)
	v.SetDefault("base_currency", services.DefaultBaseCurrency)
	v.SetDefault("storage", []string{string(storage.Postgres)})
	v.SetDefault("table", storage.DefaultTableName)
	v.SetDefault("postgres.atomic", false)
	v.SetDefault("mysql.net", "tcp")
	v.SetDefault("mongodb.database", "currency")
	v.SetDefault("mongodb.collection", storage.DefaultTableName)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key", storage.DefaultTableName)
}

func getMysqlDSN(v *viper.Viper) string {
	if dsn := v.GetString("mysql.dsn"); dsn != "" {
		return dsn
	}

	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = v.GetString("mysql.user")
	mysqlDriverConfig.Passwd = v.GetString("mysql.password")
	mysqlDriverConfig.Addr = v.GetString("mysql.addr")
	mysqlDriverConfig.Net = v.GetString("mysql.net")
	mysqlDriverConfig.DBName = v.GetString("mysql.db")
	mysqlDriverConfig.ParseTime = true

	return mysqlDriverConfig.FormatDSN()
}

func contains(providers []storage.Provider, provider storage.Provider) bool {
	for _, p := range providers {
		if p == provider {
			return true
		}
	}

	return false
}

func validateProvider(provider currency.Provider, feedFile string) error {
	if provider == currency.FileProvider && feedFile == "" {
		return configError(fmt.Errorf("feed_file is required for the %s provider", provider))
	}

	return nil
}

func configError(err error) error {
	return &currency.StageError{Stage: currency.StageConfig, Err: err}
}

// LoadSettings reads the config file, .env and the environment. A missing
// config file is only an error when the path was given explicitly.
func LoadSettings(v *viper.Viper, fs afero.Fs, path string, required bool) (*Settings, error) {
	_ = godotenv.Load()

	setDefaults(v)
	v.SetFs(fs)
	v.SetEnvPrefix("CURRENCY_CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("db_source", "DB_SOURCE"); err != nil {
		return nil, configError(err)
	}

	exists, err := afero.Exists(fs, path)

	if err != nil {
		return nil, configError(err)
	}

	if exists || required {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, configError(fmt.Errorf("error while reading config file %s: %w", path, err))
		}
	}

	provider, err := currency.ConvertToProviderFromString(v.GetString("provider"))

	if err != nil {
		return nil, configError(err)
	}

	storages, err := storage.ConvertToProvidersFromStringSlice(v.GetStringSlice("storage"))

	if err != nil {
		return nil, configError(err)
	}

	dbSource := v.GetString("db_source")

	if contains(storages, storage.Postgres) && dbSource == "" {
		return nil, configError(storage.ErrMissingDBSource)
	}

	if err := validateProvider(provider, v.GetString("feed_file")); err != nil {
		return nil, err
	}

	table := v.GetString("table")

	return &Settings{
		Provider:     provider,
		FeedURL:      v.GetString("feed_url"),
		FeedFile:     v.GetString("feed_file"),
		HTTPTimeout:  v.GetDuration("http_timeout"),
		CurrencyFile: v.GetString("currency_file"),
		BaseCurrency: strings.ToUpper(v.GetString("base_currency")),
		Storage:      storages,
		StorageConfig: StorageConfig{
			storage.Postgres: storage.PostgresConfig{
				ConnectionString: dbSource,
				TableName:        table,
				Atomic:           v.GetBool("postgres.atomic"),
			},
			storage.MySQL: storage.MySQLConfig{
				ConnectionString: getMysqlDSN(v),
				TableName:        table,
			},
			storage.MongoDB: storage.MongoDBConfig{
				ConnectionString: v.GetString("mongodb.uri"),
				Database:         v.GetString("mongodb.database"),
				Collection:       v.GetString("mongodb.collection"),
			},
			storage.Redis: storage.RedisConfig{
				URL: v.GetString("redis.url"),
				Key: v.GetString("redis.key"),
			},
		},
	}, nil
}
