package database

import "context"

// Row maps a column name to its value for one record
type Row map[string]interface{}

// SourceStore is the read side of a migration.
type SourceStore interface {
	Count(ctx context.Context, table string) (int64, error)
	Select(ctx context.Context, table string, columns []string) ([]Row, error)
	Close() error
}

// Destination receives rows. InsertBatch is used for whole batches and for single-row retries alike.
type Destination interface {
	InsertBatch(ctx context.Context, table string, rows []Row) error
	Close() error
}
