package sheets

import (
	"context"

	"billetera/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes a mirrored row by the transaction ID
	// written alongside it.
	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}
)
