package migration

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/SusheelSathyaraj/TableMigrator/config"
	"github.com/SusheelSathyaraj/TableMigrator/database"
	"github.com/sirupsen/logrus"
)

// config for migration
type MigrationConfig struct {
	BatchSize int
	Reporter  Reporter
	Logger    logrus.FieldLogger
}

// Migrator copies tables from a source store into a destination, one table at a time.
type Migrator struct {
	Config       MigrationConfig
	SourceClient database.SourceStore
	TargetClient database.Destination
}

// Results of the migration
type MigrationResult struct {
	Tables               []*TableOutcome
	TotalTablesProcessed int
	TotalRows            int64
	TotalRowsMigrated    int64
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}

// creating a new migrator
func NewMigrator(cfg MigrationConfig, source database.SourceStore, target database.Destination) *Migrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.Reporter == nil {
		cfg.Reporter = Discard{}
	}
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		cfg.Logger = logger
	}
	return &Migrator{
		Config:       cfg,
		SourceClient: source,
		TargetClient: target,
	}
}

// Run migrates every table in order. It stops at the first table whose rows
// cannot be read and returns the outcomes collected so far with that error.
func (m *Migrator) Run(ctx context.Context, tables []config.TableDescriptor) (*MigrationResult, error) {
	result := &MigrationResult{
		StartTime: time.Now(),
		Tables:    make([]*TableOutcome, 0, len(tables)),
	}

	for _, table := range tables {
		outcome, err := m.MigrateTable(ctx, table)
		if err != nil {
			result.finish()
			return result, err
		}
		result.Tables = append(result.Tables, outcome)
		result.TotalTablesProcessed++
		result.TotalRows += outcome.Total
		result.TotalRowsMigrated += int64(outcome.Uploaded)
	}

	result.finish()
	m.Config.Reporter.RunComplete(result)
	return result, nil
}

func (r *MigrationResult) finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// MigrateTable copies one table. Count and select failures are returned and
// nothing is uploaded; insert failures are recorded in the outcome and never returned.
func (m *Migrator) MigrateTable(ctx context.Context, table config.TableDescriptor) (*TableOutcome, error) {
	log := m.Config.Logger.WithField("table", table.Name)
	outcome := &TableOutcome{
		Table:     table.Name,
		StartTime: time.Now(),
	}

	total, err := m.SourceClient.Count(ctx, table.Name)
	if err != nil {
		return nil, fmt.Errorf("count rows in %s: %w", table.Name, err)
	}
	outcome.Total = total
	m.Config.Reporter.StartTable(table.Name, total)

	rows, err := m.SourceClient.Select(ctx, table.Name, table.Columns)
	if err != nil {
		return nil, fmt.Errorf("select %d columns from %s: %w", len(table.Columns), table.Name, err)
	}
	outcome.Fetched = len(rows)
	if int64(len(rows)) != total {
		log.Debugf("fetched %d rows, counted %d", len(rows), total)
	}

	NormalizeRows(rows)

	for i, batch := range Partition(rows, m.Config.BatchSize) {
		result := m.uploadBatch(ctx, table.Name, i, i*m.Config.BatchSize, batch)
		outcome.add(result)
		if result.Err == nil {
			m.Config.Reporter.BatchUploaded(table.Name, outcome.Uploaded, total)
		}
	}

	outcome.Duration = time.Since(outcome.StartTime)
	m.Config.Reporter.FinishTable(outcome)
	log.WithField("uploaded", outcome.Uploaded).Debugf("finished in %v", outcome.Duration)
	return outcome, nil
}

// uploadBatch inserts the batch in one call and, if that is rejected, retries every row on its own once.
func (m *Migrator) uploadBatch(ctx context.Context, table string, index, offset int, batch []database.Row) BatchResult {
	result := BatchResult{
		Index:  index,
		Offset: offset,
		Size:   len(batch),
	}

	result.Err = m.TargetClient.InsertBatch(ctx, table, batch)
	if result.Err == nil {
		result.Uploaded = len(batch)
		return result
	}
	m.Config.Reporter.BatchFailed(table, offset, result.Err)

	result.Rows = make([]RowResult, len(batch))
	for i, row := range batch {
		rowResult := RowResult{Offset: offset + i}
		rowResult.Err = m.TargetClient.InsertBatch(ctx, table, []database.Row{row})
		if rowResult.Err == nil {
			result.Uploaded++
		} else {
			m.Config.Reporter.RowSkipped(table, rowResult.Offset, rowResult.Err)
		}
		result.Rows[i] = rowResult
	}
	return result
}
