package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

func newReport(id string, created time.Time) *entity.Report {
	return &entity.Report{
		ID:        id,
		Title:     "Overflowing bin",
		City:      "Pune",
		Photos:    []string{"https://img/1.jpg"},
		Status:    entity.ReportStatusPending,
		PostedBy:  "citizen",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestReportRepositoryMutateStatusGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newReport("r1", now)))

	_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error {
		r.Title = "changed"
		return repository.ErrStatusConflict
	})
	assert.ErrorIs(t, err, repository.ErrStatusConflict)

	_, err = repo.Mutate(ctx, "missing", func(r *entity.Report) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stored, _ := repo.GetByID(ctx, "r1")
	assert.Equal(t, "Overflowing bin", stored.Title)
}

func TestReportRepositoryConcurrentClaimsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newReport("r1", now)))

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error {
				return r.Claim(string(rune('a'+n)), now, now.Add(time.Hour))
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, entity.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestReportRepositoryClaimKeepsConcurrentUpvotes(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newReport("r1", now)))

	var wg sync.WaitGroup
	for _, user := range []string{"u1", "u2", "u3"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error { return r.AddUpvote(user) })
			assert.NoError(t, err)
		}(user)
	}
	_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error {
		return r.Claim("ngo-a", now, now.Add(time.Hour))
	})
	require.NoError(t, err)
	wg.Wait()

	stored, _ := repo.GetByID(ctx, "r1")
	assert.Equal(t, entity.ReportStatusTaken, stored.Status)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, stored.Upvotes)
}

func TestReportRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		r := newReport(id, base.Add(time.Duration(i)*time.Hour))
		if id == "r2" {
			r.City = "Mumbai"
			r.Upvotes = []string{"u9"}
		}
		if id == "r3" {
			r.AddComment("u7", "seen it too", base)
		}
		require.NoError(t, repo.Create(ctx, r))
	}

	all, total, err := repo.List(ctx, repository.ReportFilter{}, repository.SortByCreatedAt, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 2)
	assert.Equal(t, "r3", all[0].ID)

	pune, total, _ := repo.List(ctx, repository.ReportFilter{City: "Pune"}, repository.SortByCreatedAt, 10, 0)
	assert.EqualValues(t, 2, total)
	assert.Len(t, pune, 2)

	upvoted, _, _ := repo.List(ctx, repository.ReportFilter{UpvotedBy: "u9"}, repository.SortByCreatedAt, 10, 0)
	require.Len(t, upvoted, 1)
	assert.Equal(t, "r2", upvoted[0].ID)

	commented, _, _ := repo.List(ctx, repository.ReportFilter{CommentedBy: "u7"}, repository.SortByCreatedAt, 10, 0)
	require.Len(t, commented, 1)
	assert.Equal(t, "r3", commented[0].ID)

	empty, _, _ := repo.List(ctx, repository.ReportFilter{}, repository.SortByCreatedAt, 10, 50)
	assert.Empty(t, empty)
}

func TestReportRepositoryListOverdue(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	late := newReport("late", now.Add(-96*time.Hour))
	require.NoError(t, late.Claim("ngo-a", now.Add(-72*time.Hour), now.Add(-time.Hour)))
	onTime := newReport("on-time", now.Add(-96*time.Hour))
	require.NoError(t, onTime.Claim("ngo-b", now.Add(-72*time.Hour), now.Add(time.Hour)))
	pending := newReport("pending", now)

	for _, r := range []*entity.Report{late, onTime, pending} {
		require.NoError(t, repo.Create(ctx, r))
	}

	overdue, err := repo.ListOverdue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)
}

func TestReportRepositoryMutateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	require.NoError(t, repo.Create(ctx, newReport("r1", time.Now())))

	_, err := repo.Mutate(ctx, "r1", func(r *entity.Report) error { return r.AddUpvote("u1") })
	require.NoError(t, err)

	_, err = repo.Mutate(ctx, "r1", func(r *entity.Report) error {
		r.Title = "changed"
		return r.AddUpvote("u1")
	})
	assert.ErrorIs(t, err, entity.ErrAlreadyUpvoted)

	stored, _ := repo.GetByID(ctx, "r1")
	assert.Equal(t, "Overflowing bin", stored.Title)
	assert.Equal(t, []string{"u1"}, stored.Upvotes)

	_, err = repo.Mutate(ctx, "missing", func(r *entity.Report) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "asha@example.com", Role: entity.RoleUser}))

	err := repo.Create(ctx, &entity.User{ID: "u2", Email: "ASHA@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := repo.GetByEmail(ctx, "Asha@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.GetByEmail(ctx, "asha@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNgoRequestRepositoryUpdateIfStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewNgoRequestRepository()
	req := &entity.NgoRequest{ID: "q1", Email: "green@ngo.org", Status: entity.NgoRequestPending}
	require.NoError(t, repo.Create(ctx, req))

	found, err := repo.FindPendingByEmail(ctx, "GREEN@ngo.org")
	require.NoError(t, err)
	assert.Equal(t, "q1", found.ID)

	found.Status = entity.NgoRequestApproved
	require.NoError(t, repo.UpdateIfStatus(ctx, found, entity.NgoRequestPending))

	found.Status = entity.NgoRequestRejected
	assert.ErrorIs(t, repo.UpdateIfStatus(ctx, found, entity.NgoRequestPending), repository.ErrStatusConflict)

	_, err = repo.FindPendingByEmail(ctx, "green@ngo.org")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNgoRequestRepositoryOnePendingPerEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewNgoRequestRepository()
	require.NoError(t, repo.Create(ctx, &entity.NgoRequest{ID: "q1", Email: "green@ngo.org", Status: entity.NgoRequestPending}))

	err := repo.Create(ctx, &entity.NgoRequest{ID: "q2", Email: "Green@NGO.org", Status: entity.NgoRequestPending})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	first, _ := repo.GetByID(ctx, "q1")
	first.Status = entity.NgoRequestRejected
	require.NoError(t, repo.UpdateIfStatus(ctx, first, entity.NgoRequestPending))
	assert.NoError(t, repo.Create(ctx, &entity.NgoRequest{ID: "q3", Email: "green@ngo.org", Status: entity.NgoRequestPending}))
}

func TestOTPRepositoryExpires(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &otpRepository{entries: make(map[string]otpEntry), now: func() time.Time { return clock }}

	require.NoError(t, repo.Save(ctx, "A@b.com", "123456", 10*time.Minute))
	code, err := repo.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	clock = clock.Add(11 * time.Minute)
	_, err = repo.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
