package portfolio

import crerr "github.com/cockroachdb/errors"

var (
	ErrInsufficientShares = crerr.New("insufficient shares")
	ErrInvalidShares      = crerr.New("shares must be positive")
	ErrInvalidPrice       = crerr.New("price must be positive")
)
