package usecase

import (
	"context"
	"time"

	"ecotrack/internal/domain/entity"
)

// EventPublisher accepts domain events after the state change they describe
// has been stored. Publish must not block the caller on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.DomainEvent)
}

type TokenIssuer interface {
	Issue(userID string, role entity.Role, ttl time.Duration) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// FederatedIdentity is a profile vouched for by an external identity provider.
type FederatedIdentity struct {
	Email    string
	Name     string
	Photo    string
	Provider string
}

// IdentityVerifier turns a provider-issued token into a verified identity.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FederatedIdentity, error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, entity.DomainEvent) {}
