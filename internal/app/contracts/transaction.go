package contracts

import "context"

// TransactionManager runs fn inside one atomic unit. Repositories called with
// txCtx take part in the transaction. A nil return from fn commits, any error aborts.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
