package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	currency "github.com/malusev998/currency-crawler"
)

type (
	mongoStorage struct {
		uri        string
		database   string
		collection string
		client     *mongo.Client
	}

	mongoRate struct {
		Currency  string    `bson:"currency"`
		Rate      float64   `bson:"rate"`
		CreatedAt time.Time `bson:"createdAt"`
	}
)

func NewMongoStorage(config MongoDBConfig) (currency.Storage, error) {
	if config.ConnectionString == "" {
		return nil, errors.New("mongodb uri is not set")
	}

	return &mongoStorage{
		uri:        config.ConnectionString,
		database:   config.Database,
		collection: tableName(config.Collection),
	}, nil
}

func (m *mongoStorage) connect(ctx context.Context) (*mongo.Collection, error) {
	if m.client == nil {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))

		if err != nil {
			return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
		}

		m.client = client
	}

	return m.client.Database(m.database).Collection(m.collection), nil
}

func (m *mongoStorage) Store(ctx context.Context, rates []currency.Rate) ([]currency.Rate, error) {
	collection, err := m.connect(ctx)

	if err != nil {
		return nil, err
	}

	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "currency", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	if err != nil {
		return nil, fmt.Errorf("cannot create currency index: %w", err)
	}

	if _, err := collection.DeleteMany(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("cannot clear collection: %w", err)
	}

	if len(rates) == 0 {
		return []currency.Rate{}, nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	models := make([]mongo.WriteModel, 0, len(rates))
	stored := make([]currency.Rate, 0, len(rates))

	for _, rate := range rates {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"currency": rate.Currency}).
			SetReplacement(mongoRate{Currency: rate.Currency, Rate: rate.Rate, CreatedAt: now}).
			SetUpsert(true))

		rate.CreatedAt = now
		stored = append(stored, rate)
	}

	if _, err := collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return nil, err
	}

	return stored, nil
}

func (m *mongoStorage) Get(ctx context.Context, code string) (currency.Rate, error) {
	collection, err := m.connect(ctx)

	if err != nil {
		return currency.Rate{}, err
	}

	var doc mongoRate

	if err := collection.FindOne(ctx, bson.M{"currency": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return currency.Rate{}, currency.ErrCurrencyNotFound
		}

		return currency.Rate{}, err
	}

	return currency.Rate(doc), nil
}

func (m *mongoStorage) GetAll(ctx context.Context) ([]currency.Rate, error) {
	collection, err := m.connect(ctx)

	if err != nil {
		return nil, err
	}

	cursor, err := collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "currency", Value: 1}}))

	if err != nil {
		return nil, err
	}

	defer cursor.Close(ctx)

	rates := make([]currency.Rate, 0)

	for cursor.Next(ctx) {
		var doc mongoRate

		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}

		rates = append(rates, currency.Rate(doc))
	}

	return rates, cursor.Err()
}

func (m *mongoStorage) Drop(ctx context.Context) error {
	collection, err := m.connect(ctx)

	if err != nil {
		return err
	}

	return collection.Drop(ctx)
}

func (m *mongoStorage) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}

	err := m.client.Disconnect(ctx)
	m.client = nil

	return err
}

func (m *mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}
