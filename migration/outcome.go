package migration

import "time"

// RowResult is the outcome of retrying a single row after its batch was rejected.
type RowResult struct {
	Offset int
	Err    error
}

// BatchResult is the outcome of one bulk insert. Rows is only set when the
// bulk insert failed and each row was retried on its own.
type BatchResult struct {
	Index    int
	Offset   int
	Size     int
	Uploaded int
	Err      error
	Rows     []RowResult
}

// TableOutcome summarises the migration of one table
type TableOutcome struct {
	Table     string
	Total     int64 // from COUNT(*), used as the progress denominator
	Fetched   int
	Uploaded  int
	Batches   []BatchResult
	StartTime time.Time
	Duration  time.Duration
}

func (o *TableOutcome) add(result BatchResult) {
	o.Batches = append(o.Batches, result)
	o.Uploaded += result.Uploaded
}

// FailedBatches returns the batches whose bulk insert was rejected.
func (o *TableOutcome) FailedBatches() []BatchResult {
	var failed []BatchResult
	for _, b := range o.Batches {
		if b.Err != nil {
			failed = append(failed, b)
		}
	}
	return failed
}

// SkippedRows returns the rows rejected on their own retry. They are not retried again.
func (o *TableOutcome) SkippedRows() []RowResult {
	var skipped []RowResult
	for _, b := range o.Batches {
		for _, r := range b.Rows {
			if r.Err != nil {
				skipped = append(skipped, r)
			}
		}
	}
	return skipped
}

// Complete reports whether every fetched row reached the destination
func (o *TableOutcome) Complete() bool {
	return o.Uploaded == o.Fetched
}
