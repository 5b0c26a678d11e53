package domain

import "context"

// SyncPort pushes the registered checker set into the catalog tables
type SyncPort interface {
	SyncRegistered(ctx context.Context) (SyncReport, error)
}
