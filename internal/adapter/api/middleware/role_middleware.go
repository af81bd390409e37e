package middleware

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/domain/policy"
	"ecotrack/pkg/errors"
)

// RequireAction rejects callers whose role may never perform action.
// Ownership is checked later by the use case against the loaded resource.
func RequireAction(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := GetActor(c)
			if !ok {
				return errors.Unauthorized("Authentication required", nil)
			}
			if !policy.Allows(actor.Role, action) {
				return errors.Forbidden("You are not allowed to perform this action", nil)
			}
			return next(c)
		}
	}
}
