package migration

// Reporter receives progress events from the Migrator. Calls happen on the migrating goroutine, in order.
type Reporter interface {
	StartTable(table string, total int64)
	BatchUploaded(table string, uploaded int, total int64)
	BatchFailed(table string, offset int, err error)
	RowSkipped(table string, offset int, err error)
	FinishTable(outcome *TableOutcome)
	RunComplete(result *MigrationResult)
}

// Discard is a Reporter that does nothing.
type Discard struct{}

var _ Reporter = Discard{}

func (Discard) StartTable(string, int64)         {}
func (Discard) BatchUploaded(string, int, int64) {}
func (Discard) BatchFailed(string, int, error)   {}
func (Discard) RowSkipped(string, int, error)    {}
func (Discard) FinishTable(*TableOutcome)        {}
func (Discard) RunComplete(*MigrationResult)     {}
