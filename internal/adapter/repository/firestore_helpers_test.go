package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ecotrack/internal/domain/repository"
)

func TestFirestoreError(t *testing.T) {
	other := errors.New("boom")

	assert.NoError(t, firestoreError(nil))
	assert.ErrorIs(t, firestoreError(status.Error(codes.NotFound, "missing")), repository.ErrNotFound)
	assert.ErrorIs(t, firestoreError(status.Error(codes.AlreadyExists, "exists")), repository.ErrDuplicate)
	assert.Equal(t, other, firestoreError(other))
}
