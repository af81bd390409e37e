package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/labstack/echo/v4"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/policy"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/infrastructure/token"
	"ecotrack/pkg/errors"
)

const (
	// TokenCookie carries the session JWT.
	TokenCookie = "token"

	actorKey = "actor"
	userKey  = "user"
)

type AuthMiddleware struct {
	tokens   *token.Manager
	userRepo repository.UserRepository
}

func NewAuthMiddleware(tokens *token.Manager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// Authenticate resolves the session token to a stored user. The token comes
// from the cookie or, failing that, an Authorization: Bearer header.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return errors.Unauthorized("Authentication required", nil)
		}

		claims, err := m.tokens.Validate(raw)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), claims.UserID)
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.Unauthorized("User no longer exists", err)
		}
		if err != nil {
			return errors.Internal("Failed to load user", err)
		}

		// The stored role wins over the claim so demotions apply immediately.
		c.Set(userKey, user)
		c.Set(actorKey, policy.Actor{ID: user.ID, Role: user.Role})
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// GetActor returns the caller set by Authenticate.
func GetActor(c echo.Context) (policy.Actor, bool) {
	actor, ok := c.Get(actorKey).(policy.Actor)
	return actor, ok && actor.ID != ""
}

func GetUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(userKey).(*entity.User)
	return user, ok && user != nil
}

// SetActor is used by tests and by handlers that authenticate on their own.
func SetActor(c echo.Context, user *entity.User) {
	c.Set(userKey, user)
	c.Set(actorKey, policy.Actor{ID: user.ID, Role: user.Role})
}
