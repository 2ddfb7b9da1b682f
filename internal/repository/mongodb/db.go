package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jwalitptl/booking-api/internal/config"
)

const medicalRecordsCollection = "medical_records"

// NewClient connects and verifies the deployment is reachable.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the pair index that keeps one bucket per
// doctor-patient pair, plus the patient lookup index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(medicalRecordsCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "patient_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("doctor_patient_unique"),
		},
		{
			Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("patient_created"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create medical record indexes: %w", err)
	}
	return nil
}
