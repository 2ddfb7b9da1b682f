package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type medicalRecordRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMedicalRecordRepository(db *mongo.Database) repository.MedicalRecordRepository {
	return &medicalRecordRepository{
		coll: db.Collection(medicalRecordsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// AppendRecords upserts the pair's bucket and pushes entries in one atomic
// update. Two first uploads racing on the unique index leave one loser with a
// duplicate key error; the retry then lands on the winner's bucket.
func (r *medicalRecordRepository) AppendRecords(ctx context.Context, doctorID, patientID string, entries []model.RecordEntry) (*model.MedicalRecordBucket, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("append records: no entries")
	}

	bucket, err := r.appendOnce(ctx, doctorID, patientID, entries)
	if mongo.IsDuplicateKeyError(err) {
		bucket, err = r.appendOnce(ctx, doctorID, patientID, entries)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append medical records: %w", err)
	}
	return bucket, nil
}

func (r *medicalRecordRepository) appendOnce(ctx context.Context, doctorID, patientID string, entries []model.RecordEntry) (*model.MedicalRecordBucket, error) {
	now := r.now()
	filter := bson.D{
		{Key: "doctor_id", Value: doctorID},
		{Key: "patient_id", Value: patientID},
	}
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "records", Value: bson.D{{Key: "$each", Value: entries}}}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var bucket model.MedicalRecordBucket
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.MedicalRecordBucket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "patient_id", Value: patientID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	defer cursor.Close(ctx)

	buckets := []*model.MedicalRecordBucket{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode medical records: %w", err)
	}
	return buckets, nil
}
