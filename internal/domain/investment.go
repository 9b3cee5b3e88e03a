package domain

import "time"

// Investment is a position that ledger transactions link to by identifier.
type Investment struct {
	CreatedAt  time.Time
	Identifier string
	Name       string
}
