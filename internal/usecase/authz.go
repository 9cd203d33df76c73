package usecase

import (
	"fmt"

	"github.com/riskibarqy/trading-tournament/internal/domain/user"
)

func requireAuthenticated(p user.Principal) error {
	if !p.Authenticated() {
		return fmt.Errorf("%w: missing caller identity", ErrUnauthorized)
	}
	return nil
}

// requireAdmin is the only place privileged operations are authorized.
func requireAdmin(p user.Principal) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}
