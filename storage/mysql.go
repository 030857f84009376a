package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	currency "github.com/malusev998/currency-crawler"
)

type mysqlStorage struct {
	db        *sql.DB
	tableName string
}

func NewMySQLStorage(config MySQLConfig) (currency.Storage, error) {
	driverConfig, err := mysql.ParseDSN(config.ConnectionString)

	if err != nil {
		return nil, fmt.Errorf("invalid mysql connection string: %w", err)
	}

	driverConfig.ParseTime = true

	db, err := sql.Open("mysql", driverConfig.FormatDSN())

	if err != nil {
		return nil, err
	}

	return NewSQLStorage(db, config.TableName), nil
}

func NewSQLStorage(db *sql.DB, table string) currency.Storage {
	return mysqlStorage{
		db:        db,
		tableName: "`" + strings.ReplaceAll(tableName(table), "`", "``") + "`",
	}
}

func (m mysqlStorage) Store(ctx context.Context, rates []currency.Rate) ([]currency.Rate, error) {
	_, err := m.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (currency VARCHAR(50) PRIMARY KEY, rate DOUBLE NOT NULL, created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP);", m.tableName))

	if err != nil {
		return nil, fmt.Errorf("cannot create table: %w", err)
	}

	if _, err := m.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s;", m.tableName)); err != nil {
		return nil, fmt.Errorf("cannot truncate table: %w", err)
	}

	if len(rates) == 0 {
		return []currency.Rate{}, nil
	}

	tx, err := m.db.BeginTx(ctx, nil)

	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s(currency, rate) VALUES (?,?) ON DUPLICATE KEY UPDATE rate = VALUES(rate);", m.tableName))

	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	defer stmt.Close()

	for _, rate := range rates {
		if _, err := stmt.ExecContext(ctx, rate.Currency, rate.Rate); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stored := make([]currency.Rate, len(rates))
	copy(stored, rates)

	return stored, nil
}

func (m mysqlStorage) Get(ctx context.Context, code string) (currency.Rate, error) {
	var rate currency.Rate

	row := m.db.QueryRowContext(ctx, fmt.Sprintf("SELECT currency, rate, created_at FROM %s WHERE currency = ?;", m.tableName), code)

	if err := row.Scan(&rate.Currency, &rate.Rate, &rate.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return currency.Rate{}, currency.ErrCurrencyNotFound
		}

		return currency.Rate{}, err
	}

	return rate, nil
}

func (m mysqlStorage) GetAll(ctx context.Context) ([]currency.Rate, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf("SELECT currency, rate, created_at FROM %s ORDER BY currency;", m.tableName))

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	rates := make([]currency.Rate, 0)

	for rows.Next() {
		var rate currency.Rate

		if err := rows.Scan(&rate.Currency, &rate.Rate, &rate.CreatedAt); err != nil {
			return nil, err
		}

		rates = append(rates, rate)
	}

	return rates, rows.Err()
}

func (m mysqlStorage) Drop(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", m.tableName))

	return err
}

func (m mysqlStorage) Close(_ context.Context) error {
	return m.db.Close()
}

func (m mysqlStorage) GetStorageProviderName() string {
	return string(MySQL)
}
