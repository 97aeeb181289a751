package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"foamworks/internal/common"
	"foamworks/internal/repositories"
)

// Claims is the JWT payload issued on login. Role is "admin" for full
// accounts and "crew" for PIN-based field logins.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ResolveTenant runs after the echo-jwt middleware. It reads the verified
// token from the echo context, resolves the tenant (company name) from the
// users table, and stores username, tenant, and role on the request context.
func ResolveTenant(usersRepo repositories.UsersRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || claims.Username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			user, err := usersRepo.GetByUsername(c.Request().Context(), claims.Username)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
			}

			ctx := context.WithValue(c.Request().Context(), common.UsernameKey, user.Username)
			ctx = context.WithValue(ctx, common.TenantKey, user.CompanyName)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
