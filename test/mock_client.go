package test

import (
	"context"
	"fmt"

	"github.com/SusheelSathyaraj/TableMigrator/database"
)

// MemorySource is an in-memory database.SourceStore for tests
type MemorySource struct {
	data map[string][]database.Row

	failOnCount  string
	failOnSelect string

	countCalled  int
	selectCalled int
	closeCalled  int
}

var _ database.SourceStore = (*MemorySource)(nil)

func NewMemorySource() *MemorySource {
	return &MemorySource{
		data: make(map[string][]database.Row),
	}
}

func (m *MemorySource) Count(ctx context.Context, table string) (int64, error) {
	m.countCalled++
	if table == m.failOnCount {
		return 0, fmt.Errorf("mock count error for table %s", table)
	}
	data, exists := m.data[table]
	if !exists {
		return 0, fmt.Errorf("table %s doesn't exist", table)
	}
	return int64(len(data)), nil
}

func (m *MemorySource) Select(ctx context.Context, table string, columns []string) ([]database.Row, error) {
	m.selectCalled++
	if table == m.failOnSelect {
		return nil, fmt.Errorf("mock select error for table %s", table)
	}
	data, exists := m.data[table]
	if !exists {
		return nil, fmt.Errorf("table %s doesn't exist", table)
	}

	rows := make([]database.Row, 0, len(data))
	for _, src := range data {
		//copying so the migrator never touches stored data
		row := make(database.Row, len(columns))
		for _, col := range columns {
			v, ok := src[col]
			if !ok {
				return nil, fmt.Errorf("unknown column %s in %s", col, table)
			}
			if b, ok := v.([]byte); ok {
				v = append([]byte(nil), b...)
			}
			row[col] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *MemorySource) Close() error {
	m.closeCalled++
	return nil
}

func (m *MemorySource) AddTestData(table string, data []database.Row) {
	m.data[table] = data
}

func (m *MemorySource) SetFailOnCount(table string) {
	m.failOnCount = table
}

func (m *MemorySource) SetFailOnSelect(table string) {
	m.failOnSelect = table
}

func (m *MemorySource) GetSelectCallCount() int {
	return m.selectCalled
}

func (m *MemorySource) GetCloseCallCount() int {
	return m.closeCalled
}

// MemoryDestination is an in-memory database.Destination. Inserts are all or
// nothing per call, like a single INSERT statement.
type MemoryDestination struct {
	importedData map[string][]database.Row

	// rows for which reject returns true fail the whole call they are part of
	reject func(table string, row database.Row) bool

	insertCalls []int
	closeCalled int
}

var _ database.Destination = (*MemoryDestination)(nil)

func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{
		importedData: make(map[string][]database.Row),
	}
}

func (m *MemoryDestination) InsertBatch(ctx context.Context, table string, rows []database.Row) error {
	m.insertCalls = append(m.insertCalls, len(rows))
	if m.reject != nil {
		for _, row := range rows {
			if m.reject(table, row) {
				return fmt.Errorf("mock insert rejected row %v in %s", row, table)
			}
		}
	}
	m.importedData[table] = append(m.importedData[table], rows...)
	return nil
}

func (m *MemoryDestination) Close() error {
	m.closeCalled++
	return nil
}

func (m *MemoryDestination) SetReject(reject func(table string, row database.Row) bool) {
	m.reject = reject
}

func (m *MemoryDestination) GetImportedData(table string) []database.Row {
	if data, exists := m.importedData[table]; exists {
		return data
	}
	return []database.Row{}
}

func (m *MemoryDestination) GetTotalImportedRows() int {
	total := 0
	for _, tableData := range m.importedData {
		total += len(tableData)
	}
	return total
}

// sizes of every insert call, in order
func (m *MemoryDestination) GetInsertCalls() []int {
	return m.insertCalls
}

func (m *MemoryDestination) GetCloseCallCount() int {
	return m.closeCalled
}
