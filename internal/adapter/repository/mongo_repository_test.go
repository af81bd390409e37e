package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/infrastructure/database"
)

// setupTestMongo connects to MONGO_TEST_URI and drops the throwaway database afterwards.
func setupTestMongo(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, db, err := database.ConnectMongo(ctx, uri, "ecotrack_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Skipf("MongoDB not available for testing: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func takenReport(id, ngoID string, due time.Time) *entity.Report {
	now := due.Add(-48 * time.Hour)
	takenOn := now
	dueDate := due
	return &entity.Report{
		ID:        id,
		Title:     "Overflowing bin",
		City:      "Pune",
		Status:    entity.ReportStatusTaken,
		PostedBy:  "citizen",
		TakenBy:   &ngoID,
		TakenOn:   &takenOn,
		DueDate:   &dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMongoReportRepository_MutateRevert(t *testing.T) {
	db := setupTestMongo(t)
	repo := NewMongoReportRepository(db)
	ctx := context.Background()

	report := takenReport("r1", "ngo-a", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, report))
	_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error { return r.AddUpvote("u1") })
	require.NoError(t, err)

	_, err = repo.Mutate(ctx, "r1", func(r *entity.Report) error {
		_, err := r.Revert(time.Now())
		return err
	})
	require.NoError(t, err)

	_, err = repo.Mutate(ctx, "r1", func(r *entity.Report) error {
		if r.Status != entity.ReportStatusTaken {
			return repository.ErrStatusConflict
		}
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrStatusConflict)

	_, err = repo.Mutate(ctx, "missing", func(r *entity.Report) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stored, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReportStatusPending, stored.Status)
	assert.Nil(t, stored.TakenBy)
	assert.Equal(t, []string{"ngo-a"}, stored.IncompletedBy)
	assert.Equal(t, []string{"u1"}, stored.Upvotes)
}

func TestMongoReportRepository_ConcurrentUpvotes(t *testing.T) {
	db := setupTestMongo(t)
	repo := NewMongoReportRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Report{ID: "r1", Status: entity.ReportStatusPending, CreatedAt: time.Now()}))

	var wg sync.WaitGroup
	for _, user := range []string{"u1", "u2", "u3"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for {
				_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error { return r.AddUpvote(user) })
				if err != repository.ErrStatusConflict {
					return
				}
			}
		}(user)
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, stored.Upvotes)
}

func TestMongoReportRepository_ListOverdue(t *testing.T) {
	db := setupTestMongo(t)
	repo := NewMongoReportRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, takenReport("late", "ngo-a", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, takenReport("later", "ngo-a", now.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, takenReport("fine", "ngo-a", now.Add(time.Hour))))

	overdue, err := repo.ListOverdue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, "later", overdue[0].ID)
	assert.Equal(t, "late", overdue[1].ID)
}

func TestMongoUserRepository_UniqueEmail(t *testing.T) {
	db := setupTestMongo(t)
	repo := NewMongoUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "Ana@Example.com", Role: entity.RoleUser}))
	err := repo.Create(ctx, &entity.User{ID: "u2", Email: "ana@example.com", Role: entity.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	user, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
