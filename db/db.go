package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	UserCollection     *mongo.Collection
	ToursCollection    *mongo.Collection
	BookingsCollection *mongo.Collection
	ReviewsCollection  *mongo.Collection
	SettingsCollection *mongo.Collection
	Client             *mongo.Client
)

// Init connects to MongoDB and binds the collections. Call once at startup.
func Init(ctx context.Context) error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "roamly"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return err
	}

	Client = client
	database := client.Database(dbName)
	UserCollection = database.Collection("users")
	ToursCollection = database.Collection("tours")
	BookingsCollection = database.Collection("bookings")
	ReviewsCollection = database.Collection("reviews")
	SettingsCollection = database.Collection("settings")

	log.Printf("Connected to MongoDB at %s (db=%s)", uri, dbName)
	return nil
}

// EnsureIndexes creates the unique indexes the handlers rely on.
// The bookings session_id index is what makes the webhook upsert idempotent.
func EnsureIndexes(ctx context.Context) error {
	_, err := BookingsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"session_id": 1},
		Options: options.Index().SetUnique(true).SetName("unique_session_id"),
	})
	if err != nil {
		return err
	}

	_, err = UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"username": 1},
			Options: options.Index().SetUnique(true).SetName("unique_username"),
		},
		{
			Keys:    bson.M{"email": 1},
			Options: options.Index().SetUnique(true).SetName("unique_email"),
		},
	})
	if err != nil {
		return err
	}

	_, err = ReviewsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userid", Value: 1}, {Key: "tourid", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_user_tour"),
	})
	return err
}

// Close disconnects the client. Used during graceful shutdown.
func Close(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
