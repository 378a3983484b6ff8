package domain

import "context"

// Store is the unit-of-work boundary the engine operates against. Inside
// WithTransaction every repository call runs on the same database
// transaction; the whole function commits or rolls back as one unit.
type Store interface {
	Account() AccountRepository
	Ledger() TransactionRepository
	Reference() ReferenceRepository
	WithTransaction(ctx context.Context, fn func(Store) error) error
}
