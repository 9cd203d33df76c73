package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, error) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	if !ok || !p.Authenticated() {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return p, nil
}
