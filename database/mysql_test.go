package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestMySQLConnection(t *testing.T) {
	//Ensure environment variables are all fetched

	dbuser := os.Getenv("MYSQL_USER")
	dbpass := os.Getenv("MYSQL_PASS")
	dbname := os.Getenv("MYSQL_NAME")
	dbhost := os.Getenv("MYSQL_HOST")
	dbport := os.Getenv("MYSQL_PORT")

	//if any env variable is missing, skip test
	if dbuser == "" || dbpass == "" || dbname == "" || dbhost == "" || dbport == "" {
		t.Skip("Skipping Tests: All of the Environment Variables must be present")
	}

	port, err := strconv.Atoi(dbport)
	if err != nil {
		t.Fatalf("invalid MYSQL_PORT %q", dbport)
	}

	client := NewMySQLClient(dbuser, dbpass, dbhost, port, dbname)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to the MySQL database %v", err)
	}
	defer client.Close()

	t.Log("Successfully connected to MySQL database")
}

func newMockMySQLClient(t *testing.T) (*MySQLClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock, %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &MySQLClient{DB: db}, mock
}

func TestMySQLDSN(t *testing.T) {
	client := NewMySQLClient("root", "pw", "localhost", 3306, "preseleccionados")
	dsn, err := client.DSN()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("DSN %s does not parse, %v", dsn, err)
	}
	if parsed.User != "root" || parsed.Passwd != "pw" || parsed.Addr != "localhost:3306" || parsed.DBName != "preseleccionados" {
		t.Errorf("Unexpected DSN fields %+v", parsed)
	}
	if !parsed.ParseTime {
		t.Errorf("Expected parseTime in DSN %s", dsn)
	}
	if !strings.Contains(dsn, "charset=utf8mb4") {
		t.Errorf("Expected charset in DSN %s", dsn)
	}
}

func TestMySQLCount(t *testing.T) {
	client, mock := newMockMySQLClient(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `descalificados`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(1200)))

	total, err := client.Count(context.Background(), "descalificados")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 1200 {
		t.Errorf("Expected 1200 rows, got %d", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMySQLCountError(t *testing.T) {
	client, mock := newMockMySQLClient(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `missing`")).
		WillReturnError(fmt.Errorf("Error 1146: Table 'missing' doesn't exist"))

	if _, err := client.Count(context.Background(), "missing"); err == nil {
		t.Errorf("Expected error for missing table, got nil")
	}
}

func TestMySQLSelect(t *testing.T) {
	client, mock := newMockMySQLClient(t)

	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("numero").OfType("INT", int64(0)),
		mock.NewColumn("dni").OfType("VARCHAR", ""),
		mock.NewColumn("puntaje_final").OfType("DECIMAL", ""),
		mock.NewColumn("es_eib").OfType("BIT", []byte{}),
		mock.NewColumn("notas").OfType("TEXT", "").Nullable(true),
	).
		AddRow([]byte("1"), []byte("70123456"), []byte("85.50"), []byte{1}, []byte("ok")).
		AddRow([]byte("2"), []byte("4"), []byte("60"), []byte{0}, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `numero`, `dni`, `puntaje_final`, `es_eib`, `notas` FROM `preseleccionados`")).
		WillReturnRows(rows)

	got, err := client.Select(context.Background(), "preseleccionados", []string{"numero", "dni", "puntaje_final", "es_eib", "notas"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []Row{
		{"numero": int64(1), "dni": "70123456", "puntaje_final": json.Number("85.50"), "es_eib": []byte{1}, "notas": "ok"},
		{"numero": int64(2), "dni": "4", "puntaje_final": json.Number("60"), "es_eib": []byte{0}, "notas": nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMySQLSelectErrors(t *testing.T) {
	client, mock := newMockMySQLClient(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `nope` FROM `users`")).
		WillReturnError(errors.New("Error 1054: Unknown column 'nope'"))

	if _, err := client.Select(context.Background(), "users", []string{"nope"}); err == nil {
		t.Errorf("Expected error for unknown column, got nil")
	}

	if _, err := client.Select(context.Background(), "users", nil); err == nil {
		t.Errorf("Expected error for empty column list, got nil")
	}

	disconnected := &MySQLClient{}
	if _, err := disconnected.Count(context.Background(), "users"); err == nil {
		t.Errorf("Expected error without connection, got nil")
	}
	if _, err := disconnected.Select(context.Background(), "users", []string{"id"}); err == nil {
		t.Errorf("Expected error without connection, got nil")
	}
}

func TestConvertMySQLValue(t *testing.T) {
	tests := []struct {
		typeName string
		in       interface{}
		want     interface{}
		wantErr  bool
	}{
		{"INT", []byte("42"), int64(42), false},
		{"TINYINT", []byte("-1"), int64(-1), false},
		{"UNSIGNED BIGINT", []byte("18446744073709551615"), uint64(18446744073709551615), false},
		{"DOUBLE", []byte("1.25"), 1.25, false},
		{"DECIMAL", []byte("12345678901234567.89"), json.Number("12345678901234567.89"), false},
		{"DECIMAL", []byte("-0.10"), json.Number("-0.10"), false},
		{"DECIMAL", []byte("1,5"), nil, true},
		{"BIT", []byte{1}, []byte{1}, false},
		{"VARBINARY", []byte("abc"), []byte("abc"), false},
		{"VARCHAR", []byte("7"), "7", false},
		{"", []byte("abc"), []byte("abc"), false},
		{"TEXT", []byte("abc"), "abc", false},
		{"INT", []byte("x"), nil, true},
		{"INT", int64(5), int64(5), false},
		{"TEXT", nil, nil, false},
	}

	for i, tc := range tests {
		got, err := convertMySQLValue(tc.typeName, tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("[Test case: %d] convertMySQLValue(%s, %v) error: %v", i+1, tc.typeName, tc.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("[Test case: %d] convertMySQLValue(%s, %v) expected %#v, got %#v", i+1, tc.typeName, tc.in, tc.want, got)
		}
	}
}

// fails at ColumnTypes, everything else behaves like an empty result
type noTypesRows struct{}

func (noTypesRows) Columns() ([]string, error) { return []string{"dni"}, nil }
func (noTypesRows) ColumnTypes() ([]*sql.ColumnType, error) {
	return nil, errors.New("column types unavailable")
}
func (noTypesRows) Next() bool                     { return false }
func (noTypesRows) Scan(dest ...interface{}) error { return nil }
func (noTypesRows) Err() error                     { return nil }

func TestScanRowsColumnTypesError(t *testing.T) {
	rows, err := scanRows(noTypesRows{})
	if err == nil {
		t.Fatalf("Expected error when column types are unavailable, got rows %v", rows)
	}
	if !strings.Contains(err.Error(), "column types") {
		t.Errorf("Unexpected error %v", err)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := quoteIdentifier("users"); got != "`users`" {
		t.Errorf("Expected `users`, got %s", got)
	}
	if got := quoteIdentifier("we`ird"); got != "`we``ird`" {
		t.Errorf("Expected escaped backtick, got %s", got)
	}
}
