package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// adminMiddleware lets through admins holding any of roles (any admin when roles is empty).
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// wizardMiddleware loads the wizard session named by the `:id` path parameter
// and holds its lock for the duration of the request.
func wizardMiddleware(store *wizardStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, ok := store.get(ctx.Param("id"))
			if !ok {
				return errHttpNotFound
			}
			sess.mu.Lock()
			defer sess.mu.Unlock()

			ctx.Set(contextWizardKey, sess)
			return next(ctx)
		}
	}
}
