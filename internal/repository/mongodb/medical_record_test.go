package mongodb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/model"
)

// These tests need a live deployment: BOOKING_TEST_MONGO_URI=mongodb://localhost:27017
func setupTestRepository(t *testing.T) *medicalRecordRepository {
	uri := os.Getenv("BOOKING_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOOKING_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := NewClient(ctx, config.MongoConfig{URI: uri})
	require.NoError(t, err)

	db := client.Database("booking_test_" + uuid.NewString()[:8])
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	return NewMedicalRecordRepository(db).(*medicalRecordRepository)
}

func entry(path string) model.RecordEntry {
	return model.RecordEntry{Path: path, OriginalName: path, UploadedAt: time.Now().UTC()}
}

func TestMedicalRecordRepository_AppendCreatesThenExtends(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	first, err := repo.AppendRecords(ctx, "doc-1", "pat-1", []model.RecordEntry{entry("a.pdf")})
	require.NoError(t, err)
	require.Len(t, first.Records, 1)

	second, err := repo.AppendRecords(ctx, "doc-1", "pat-1", []model.RecordEntry{entry("b.pdf"), entry("c.pdf")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
	require.Len(t, second.Records, 3)
	assert.Equal(t, "a.pdf", second.Records[0].Path)
	assert.Equal(t, "c.pdf", second.Records[2].Path)
}

func TestMedicalRecordRepository_ConcurrentFirstUploadsShareBucket(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendRecords(ctx, "doc-2", "pat-2", []model.RecordEntry{entry("r.pdf")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	buckets, err := repo.ListByPatient(ctx, "pat-2")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0].Records, 5)
}

func TestMedicalRecordRepository_ListByPatientEmpty(t *testing.T) {
	repo := setupTestRepository(t)

	buckets, err := repo.ListByPatient(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestMedicalRecordRepository_AppendNothing(t *testing.T) {
	repo := &medicalRecordRepository{}

	_, err := repo.AppendRecords(context.Background(), "doc", "pat", nil)
	assert.Error(t, err)
}
