package storage

import (
	"context"

	"fxhashETL/internal/model"
)

// Storage defines a sink for normalized transactions.
type Storage interface {
	PutTransactions(ctx context.Context, txs []model.NormalizedTransaction) error
}
