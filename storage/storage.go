package storage

import (
	"errors"
	"fmt"
	"strings"

	currency "github.com/malusev998/currency-crawler"
)

type (
	Provider       string
	PostgresConfig struct {
		ConnectionString string
		TableName        string
		// Atomic runs truncate and insert in a single transaction, so a failed
		// insert keeps the previous rows instead of leaving the table empty.
		Atomic bool
	}
	MySQLConfig struct {
		ConnectionString string
		TableName        string
	}
	MongoDBConfig struct {
		ConnectionString string
		Database         string
		Collection       string
	}
	RedisConfig struct {
		URL string
		Key string
	}
)

const (
	Postgres Provider = "postgres"
	MySQL    Provider = "mysql"
	MongoDB  Provider = "mongodb"
	Redis    Provider = "redis"

	DefaultTableName = "currencies"
)

var (
	ErrStorageNotFound = errors.New("storage is not found")
	ErrMissingDBSource = errors.New("DB_SOURCE is not set")
)

func ConvertToProvidersFromStringSlice(strings []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(strings))

	for _, str := range strings {
		provider, err := ConvertToProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	case "redis":
		return Redis, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

func NewStorage(provider Provider, config interface{}) (currency.Storage, error) {
	switch provider {
	case Postgres:
		return NewPostgresStorage(config.(PostgresConfig))
	case MySQL:
		return NewMySQLStorage(config.(MySQLConfig))
	case MongoDB:
		return NewMongoStorage(config.(MongoDBConfig))
	case Redis:
		return NewRedisStorage(config.(RedisConfig))
	}

	return nil, ErrStorageNotFound
}

func tableName(name string) string {
	if name == "" {
		return DefaultTableName
	}

	return name
}
