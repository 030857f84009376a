package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	currency "github.com/malusev998/currency-crawler"
)

type (
	redisStorage struct {
		client *redis.Client
		key    string
	}

	redisRate struct {
		Rate      float64   `json:"rate"`
		CreatedAt time.Time `json:"created_at"`
	}
)

func NewRedisStorage(config RedisConfig) (currency.Storage, error) {
	opts, err := redis.ParseURL(config.URL)

	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &redisStorage{
		client: redis.NewClient(opts),
		key:    tableName(config.Key),
	}, nil
}

// Store swaps the whole hash inside MULTI/EXEC, so readers never observe a
// half written set of rates.
func (r *redisStorage) Store(ctx context.Context, rates []currency.Rate) ([]currency.Rate, error) {
	now := time.Now().UTC()
	values := make(map[string]interface{}, len(rates))
	stored := make([]currency.Rate, 0, len(rates))

	for _, rate := range rates {
		payload, err := json.Marshal(redisRate{Rate: rate.Rate, CreatedAt: now})

		if err != nil {
			return nil, err
		}

		values[rate.Currency] = string(payload)
		rate.CreatedAt = now
		stored = append(stored, rate)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)

		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (r *redisStorage) Get(ctx context.Context, code string) (currency.Rate, error) {
	value, err := r.client.HGet(ctx, r.key, code).Result()

	if errors.Is(err, redis.Nil) {
		return currency.Rate{}, currency.ErrCurrencyNotFound
	}

	if err != nil {
		return currency.Rate{}, err
	}

	return decodeRedisRate(code, value)
}

func (r *redisStorage) GetAll(ctx context.Context) ([]currency.Rate, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()

	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(values))

	for code := range values {
		codes = append(codes, code)
	}

	sort.Strings(codes)
	rates := make([]currency.Rate, 0, len(codes))

	for _, code := range codes {
		rate, err := decodeRedisRate(code, values[code])

		if err != nil {
			return nil, err
		}

		rates = append(rates, rate)
	}

	return rates, nil
}

func decodeRedisRate(code, value string) (currency.Rate, error) {
	var data redisRate

	if err := json.Unmarshal([]byte(value), &data); err != nil {
		return currency.Rate{}, fmt.Errorf("cannot decode rate for %s: %w", code, err)
	}

	return currency.Rate{
		Currency:  code,
		Rate:      data.Rate,
		CreatedAt: data.CreatedAt,
	}, nil
}

func (r *redisStorage) Drop(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *redisStorage) Close(_ context.Context) error {
	return r.client.Close()
}

func (r *redisStorage) GetStorageProviderName() string {
	return string(Redis)
}
