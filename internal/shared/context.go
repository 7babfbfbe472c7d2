package shared

import "context"

type identityContextKey struct{}

type subjectContextKey struct{}

// ContextWithIdentity stores the resolved identity snapshot in context. The
// value is typed as any so that shared stays free of domain imports.
func ContextWithIdentity(ctx context.Context, identity any) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity snapshot stored by ContextWithIdentity.
func IdentityFromContext(ctx context.Context) any {
	return ctx.Value(identityContextKey{})
}

// ContextWithSubject stores the raw token subject id.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// SubjectFromContext returns the token subject id, or "" when unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey{}).(string)
	return subject
}
