package http

import (
	"context"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/security"
)

type claimsKey struct{}

func withClaims(ctx context.Context, claims *security.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the authenticated caller, or nil on public routes.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey{}).(*security.UserClaims)
	return claims
}

// UserIDFromContext extracts the caller ID set by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, error) {
	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.UserID == "" {
		return "", domain.Unauthorizedf("not authenticated")
	}
	return claims.UserID, nil
}
