package shared

import "context"

type (
	sessionContextKey struct{}
	tokenContextKey   struct{}
	companyContextKey struct{}
)

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithAccessToken attaches the backend bearer token for outgoing calls.
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// AccessTokenFromContext returns the bearer token, or "" when anonymous.
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// ContextWithCompany attaches the selected company id for outgoing calls.
func ContextWithCompany(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext returns the selected company id, or "".
func CompanyFromContext(ctx context.Context) string {
	id, _ := ctx.Value(companyContextKey{}).(string)
	return id
}
