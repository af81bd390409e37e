package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingReport() *Report {
	return &Report{ID: "r1", Title: "Overflowing bins", Status: ReportStatusPending, PostedBy: "u1"}
}

func TestClaim(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending report is taken", func(t *testing.T) {
		r := pendingReport()
		require.NoError(t, r.Claim("ngo-a", now, now.Add(48*time.Hour)))

		assert.Equal(t, ReportStatusTaken, r.Status)
		assert.Equal(t, "ngo-a", r.AssignedTo())
		assert.Equal(t, now, *r.TakenOn)
		assert.Equal(t, now.Add(48*time.Hour), *r.DueDate)
		assert.True(t, r.AssignmentConsistent())
	})

	t.Run("non pending report is rejected", func(t *testing.T) {
		for _, status := range []ReportStatus{ReportStatusTaken, ReportStatusCompleted} {
			r := pendingReport()
			r.Status = status
			assert.ErrorIs(t, r.Claim("ngo-a", now, now.Add(time.Hour)), ErrInvalidTransition)
		}
	})

	t.Run("due date must be in the future", func(t *testing.T) {
		r := pendingReport()
		assert.ErrorIs(t, r.Claim("ngo-a", now, now), ErrDueDateNotInFuture)
		assert.Equal(t, ReportStatusPending, r.Status)
		assert.Nil(t, r.TakenBy)
	})
}

func TestComplete(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	taken := func() *Report {
		r := pendingReport()
		require.NoError(t, r.Claim("ngo-a", now, now.Add(time.Hour)))
		return r
	}

	t.Run("assignee completes with images", func(t *testing.T) {
		r := taken()
		require.NoError(t, r.Complete("ngo-a", []string{"https://img/1.jpg"}, "cleaned", now))

		assert.Equal(t, ReportStatusCompleted, r.Status)
		assert.Len(t, r.ResolvedImages, 1)
		assert.Equal(t, "cleaned", r.ResolutionDescription)
		assert.Equal(t, now, *r.ResolvedOn)
		assert.True(t, r.AssignmentConsistent())
	})

	t.Run("no images", func(t *testing.T) {
		assert.ErrorIs(t, taken().Complete("ngo-a", nil, "", now), ErrNoResolutionImages)
	})

	t.Run("other NGO", func(t *testing.T) {
		assert.ErrorIs(t, taken().Complete("ngo-b", []string{"x"}, "", now), ErrNotAssignee)
	})

	t.Run("pending report has no assignee", func(t *testing.T) {
		assert.ErrorIs(t, pendingReport().Complete("ngo-a", []string{"x"}, "", now), ErrNotAssignee)
	})

	t.Run("already completed", func(t *testing.T) {
		r := taken()
		require.NoError(t, r.Complete("ngo-a", []string{"x"}, "", now))
		assert.ErrorIs(t, r.Complete("ngo-a", []string{"y"}, "", now), ErrInvalidTransition)
	})
}

func TestRevert(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := pendingReport()
	require.NoError(t, r.Claim("ngo-a", now, now.Add(time.Hour)))

	assert.False(t, r.IsOverdue(now))
	assert.True(t, r.IsOverdue(now.Add(2*time.Hour)))

	previous, err := r.Revert(now.Add(2 * time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "ngo-a", previous)
	assert.Equal(t, ReportStatusPending, r.Status)
	assert.Nil(t, r.TakenBy)
	assert.Nil(t, r.TakenOn)
	assert.Nil(t, r.DueDate)
	assert.Equal(t, []string{"ngo-a"}, r.IncompletedBy)
	assert.True(t, r.AssignmentConsistent())

	_, err = r.Revert(now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpvotes(t *testing.T) {
	r := pendingReport()

	require.NoError(t, r.AddUpvote("u2"))
	assert.ErrorIs(t, r.AddUpvote("u2"), ErrAlreadyUpvoted)
	assert.Equal(t, []string{"u2"}, r.Upvotes)

	require.NoError(t, r.RemoveUpvote("u2"))
	assert.ErrorIs(t, r.RemoveUpvote("u2"), ErrUpvoteNotFound)
	assert.Empty(t, r.Upvotes)
}

func TestAddCommentTracksCommenters(t *testing.T) {
	now := time.Now()
	r := pendingReport()

	r.AddComment("u2", "first", now)
	r.AddComment("u2", "second", now)
	r.AddComment("u3", "third", now)

	assert.Len(t, r.Comments, 3)
	assert.Equal(t, []string{"u2", "u3"}, r.CommenterIDs)
}

func TestCloneDoesNotAlias(t *testing.T) {
	now := time.Now()
	r := pendingReport()
	require.NoError(t, r.Claim("ngo-a", now, now.Add(time.Hour)))
	r.Upvotes = []string{"u2"}

	c := r.Clone()
	*c.TakenBy = "ngo-b"
	c.Upvotes[0] = "u9"

	assert.Equal(t, "ngo-a", r.AssignedTo())
	assert.Equal(t, "u2", r.Upvotes[0])
}

func TestUserProfileComplete(t *testing.T) {
	reg, mobile := "REG-1", "9999999999"

	u := &User{Name: "Green Earth", City: "Pune", Role: RoleUser}
	assert.True(t, u.ProfileComplete())

	u.Role = RoleNGO
	assert.False(t, u.ProfileComplete())

	u.RegistrationNumber = &reg
	u.MobileNumber = &mobile
	u.Photo = "https://img/logo.png"
	assert.True(t, u.ProfileComplete())

	u.ClearNGOFields()
	assert.Nil(t, u.RegistrationNumber)
	assert.Nil(t, u.MobileNumber)
}
