package database

import (
	"context"
	"time"

	"github.com/sam-nazarian/event-booking-practice/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func InitMongo(config *config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, err
	}

	return client, client.Database(config.Database), nil
}

// EnsureIndexes 啟動時建立索引：
// events 的 name 唯一、slug、price+ratingsAverage 複合、location 2dsphere；
// reviews 與 participants 的 (event, user) 組合唯一
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	eventIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "slug", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
	}
	if _, err := db.Collection("events").Indexes().CreateMany(ctx, eventIndexes); err != nil {
		return err
	}

	pairUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "event", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("reviews").Indexes().CreateOne(ctx, pairUnique); err != nil {
		return err
	}
	if _, err := db.Collection("participants").Indexes().CreateOne(ctx, pairUnique); err != nil {
		return err
	}

	return nil
}
