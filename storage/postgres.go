package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	currency "github.com/malusev998/currency-crawler"
)

const (
	postgresCreateTable = `CREATE TABLE IF NOT EXISTS %s (
	currency   VARCHAR(50) PRIMARY KEY,
	rate       FLOAT NOT NULL,
	created_at TIMESTAMP DEFAULT NOW()
)`
	postgresTruncate = "TRUNCATE TABLE %s"
	postgresInsert   = `INSERT INTO %s (currency, rate) VALUES ($1, $2)
ON CONFLICT (currency) DO UPDATE SET rate = EXCLUDED.rate
RETURNING currency, rate, created_at`
	postgresGet    = "SELECT currency, rate, created_at FROM %s WHERE currency = $1"
	postgresGetAll = "SELECT currency, rate, created_at FROM %s ORDER BY currency"
	postgresDrop   = "DROP TABLE IF EXISTS %s"
)

// postgresStorage holds a single connection, opened by the first operation
// and released by Close.
type postgresStorage struct {
	dsn       string
	tableName string
	atomic    bool
	conn      *pgx.Conn
}

func NewPostgresStorage(config PostgresConfig) (currency.Storage, error) {
	if config.ConnectionString == "" {
		return nil, ErrMissingDBSource
	}

	if _, err := pgx.ParseConfig(config.ConnectionString); err != nil {
		return nil, fmt.Errorf("invalid postgres connection string: %w", err)
	}

	return &postgresStorage{
		dsn:       config.ConnectionString,
		tableName: pgx.Identifier{tableName(config.TableName)}.Sanitize(),
		atomic:    config.Atomic,
	}, nil
}

func (p *postgresStorage) connect(ctx context.Context) (*pgx.Conn, error) {
	if p.conn != nil {
		return p.conn, nil
	}

	conn, err := pgx.Connect(ctx, p.dsn)

	if err != nil {
		return nil, fmt.Errorf("cannot connect to postgres: %w", err)
	}

	p.conn = conn

	return conn, nil
}

func (p *postgresStorage) query(format string) string {
	return fmt.Sprintf(format, p.tableName)
}

func (p *postgresStorage) Store(ctx context.Context, rates []currency.Rate) ([]currency.Rate, error) {
	conn, err := p.connect(ctx)

	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, p.query(postgresCreateTable)); err != nil {
		return nil, fmt.Errorf("cannot create table: %w", err)
	}

	if p.atomic {
		return p.replace(ctx, conn, rates)
	}

	if _, err := conn.Exec(ctx, p.query(postgresTruncate)); err != nil {
		return nil, fmt.Errorf("cannot truncate table: %w", err)
	}

	if len(rates) == 0 {
		return []currency.Rate{}, nil
	}

	tx, err := conn.Begin(ctx)

	if err != nil {
		return nil, err
	}

	stored, err := p.insert(ctx, tx, rates)

	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return stored, nil
}

func (p *postgresStorage) replace(ctx context.Context, conn *pgx.Conn, rates []currency.Rate) ([]currency.Rate, error) {
	stored := []currency.Rate{}

	err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, p.query(postgresTruncate)); err != nil {
			return fmt.Errorf("cannot truncate table: %w", err)
		}

		if len(rates) == 0 {
			return nil
		}

		var err error
		stored, err = p.insert(ctx, tx, rates)

		return err
	})

	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (p *postgresStorage) insert(ctx context.Context, tx pgx.Tx, rates []currency.Rate) ([]currency.Rate, error) {
	batch := &pgx.Batch{}
	insert := p.query(postgresInsert)

	for _, rate := range rates {
		batch.Queue(insert, rate.Currency, rate.Rate)
	}

	results := tx.SendBatch(ctx, batch)
	stored := make([]currency.Rate, 0, len(rates))

	for range rates {
		var rate currency.Rate

		if err := results.QueryRow().Scan(&rate.Currency, &rate.Rate, &rate.CreatedAt); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("cannot insert rate: %w", err)
		}

		stored = append(stored, rate)
	}

	if err := results.Close(); err != nil {
		return nil, err
	}

	return stored, nil
}

func (p *postgresStorage) Get(ctx context.Context, code string) (currency.Rate, error) {
	conn, err := p.connect(ctx)

	if err != nil {
		return currency.Rate{}, err
	}

	var rate currency.Rate

	err = conn.QueryRow(ctx, p.query(postgresGet), code).Scan(&rate.Currency, &rate.Rate, &rate.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return currency.Rate{}, currency.ErrCurrencyNotFound
	}

	if err != nil {
		return currency.Rate{}, err
	}

	return rate, nil
}

func (p *postgresStorage) GetAll(ctx context.Context) ([]currency.Rate, error) {
	conn, err := p.connect(ctx)

	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, p.query(postgresGetAll))

	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByPos[currency.Rate])
}

func (p *postgresStorage) Drop(ctx context.Context) error {
	conn, err := p.connect(ctx)

	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, p.query(postgresDrop))

	return err
}

func (p *postgresStorage) Close(ctx context.Context) error {
	if p.conn == nil {
		return nil
	}

	err := p.conn.Close(ctx)
	p.conn = nil

	return err
}

func (p *postgresStorage) GetStorageProviderName() string {
	return string(Postgres)
}
