package cmd

import (
	"context"
	"sort"
	"sync"
	"time"

	currency "github.com/malusev998/currency-crawler"
)

type (
	memoryStorage struct {
		mu     sync.Mutex
		rates  map[string]currency.Rate
		closed int
	}

	serviceFunc func(ctx context.Context) (map[string][]currency.Rate, error)
)

func (f serviceFunc) Save(ctx context.Context) (map[string][]currency.Rate, error) {
	return f(ctx)
}

func newMemoryStorage(rates ...currency.Rate) *memoryStorage {
	m := &memoryStorage{rates: make(map[string]currency.Rate)}

	for _, rate := range rates {
		m.rates[rate.Currency] = rate
	}

	return m
}

func (m *memoryStorage) Store(_ context.Context, rates []currency.Rate) ([]currency.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	m.rates = make(map[string]currency.Rate, len(rates))
	stored := make([]currency.Rate, 0, len(rates))

	for _, rate := range rates {
		rate.CreatedAt = now
		m.rates[rate.Currency] = rate
		stored = append(stored, rate)
	}

	return stored, nil
}

func (m *memoryStorage) Get(_ context.Context, code string) (currency.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rate, ok := m.rates[code]

	if !ok {
		return currency.Rate{}, currency.ErrCurrencyNotFound
	}

	return rate, nil
}

func (m *memoryStorage) GetAll(_ context.Context) ([]currency.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rates := make([]currency.Rate, 0, len(m.rates))

	for _, rate := range m.rates {
		rates = append(rates, rate)
	}

	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Currency < rates[j].Currency
	})

	return rates, nil
}

func (m *memoryStorage) Drop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rates = make(map[string]currency.Rate)

	return nil
}

func (m *memoryStorage) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed++

	return nil
}

func (m *memoryStorage) GetStorageProviderName() string {
	return "memory"
}
