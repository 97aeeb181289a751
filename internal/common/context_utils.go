package common

import (
	"context"
)

type contextKey string

const (
	UsernameKey contextKey = "username"
	TenantKey   contextKey = "tenant"
	RoleKey     contextKey = "role"
)

// GetUsernameFromContext extracts the authenticated username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}

// GetTenantFromContext extracts the resolved tenant (company) key from the request context.
func GetTenantFromContext(ctx context.Context) (string, bool) {
	tenant, ok := ctx.Value(TenantKey).(string)
	return tenant, ok && tenant != ""
}

// GetRoleFromContext extracts the caller role ("admin" or "crew") from the request context.
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok && role != ""
}
