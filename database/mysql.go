package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/SusheelSathyaraj/TableMigrator/config"

	"github.com/go-sql-driver/mysql"
)

type MySQLClient struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
	Charset  string
	DB       *sql.DB
}

var _ SourceStore = (*MySQLClient)(nil)

// create a MySQL client using manual parameters, (for tests)
func NewMySQLClient(user, password, host string, port int, dbname string) *MySQLClient {
	return &MySQLClient{
		User:     user,
		Password: password,
		Host:     host,
		Port:     port,
		DBName:   dbname,
		Charset:  "utf8mb4",
	}
}

// create a new MySQL client using config file
func NewMySQLClientFromConfig(cfg *config.Config) *MySQLClient {
	return &MySQLClient{
		User:     cfg.MySQL.User,
		Password: cfg.MySQL.Password,
		Host:     cfg.MySQL.Host,
		Port:     cfg.MySQL.Port,
		DBName:   cfg.MySQL.DBName,
		Charset:  cfg.MySQL.Charset,
	}
}

// DSN builds the driver connection string
func (c *MySQLClient) DSN() (string, error) {
	dsnCfg := mysql.NewConfig()
	dsnCfg.User = c.User
	dsnCfg.Passwd = c.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	dsnCfg.DBName = c.DBName
	dsnCfg.ParseTime = true
	if c.Charset != "" {
		if err := dsnCfg.Apply(mysql.Charset(c.Charset, "")); err != nil {
			return "", fmt.Errorf("invalid charset %s, %w", c.Charset, err)
		}
	}
	return dsnCfg.FormatDSN(), nil
}

// to connect with the MySQL DB
func (c *MySQLClient) Connect(ctx context.Context) error {
	dsn, err := c.DSN()
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection, %w", err)
	}

	//test the connection
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping the MySQL database, %w", err)
	}

	// one handle reused for every query, one call at a time
	db.SetMaxOpenConns(1)

	c.DB = db
	return nil
}

// closes the database connection
func (c *MySQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Count returns the number of rows currently in table
func (c *MySQLClient) Count(ctx context.Context, table string) (int64, error) {
	if c.DB == nil {
		return 0, fmt.Errorf("db connection not established")
	}

	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(table))
	if err := c.DB.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s, %w", table, err)
	}
	return total, nil
}

// Select reads every row of table for the given columns into memory, in server order
func (c *MySQLClient) Select(ctx context.Context, table string, columns []string) ([]Row, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("db connection not established")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns requested for table %s", table)
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdentifier(col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdentifier(table))

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query on table %s, %w", table, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// the part of *sql.Rows that scanRows reads
type resultRows interface {
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scans every row into a Row keyed by the result column names
func scanRows(rows resultRows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names, %w", err)
	}

	// without type names text columns would stay raw bytes and one-character values would read as flags
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types, %w", err)
	}
	typeNames := make([]string, len(columns))
	for i, ct := range types {
		if i < len(typeNames) {
			typeNames[i] = ct.DatabaseTypeName()
		}
	}

	var results []Row

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuesPtr := make([]interface{}, len(columns))

		//setup pointers
		for i := range values {
			valuesPtr[i] = &values[i]
		}

		if err := rows.Scan(valuesPtr...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, colName := range columns {
			val, err := convertMySQLValue(typeNames[i], values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", colName, err)
			}
			row[colName] = val
		}
		results = append(results, row)
	}

	//Check for error after iterating through rows
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during the row iteration, %w", err)
	}
	return results, nil
}

// convertMySQLValue turns the bytes left by the driver into typed values by column type.
// BIT, BINARY and BLOB columns stay raw bytes, as do columns of unknown type.
func convertMySQLValue(typeName string, val interface{}) (interface{}, error) {
	b, ok := val.([]byte)
	if !ok {
		return val, nil
	}

	typeName = strings.ToUpper(typeName)
	switch typeName {
	case "", "BIT", "BINARY", "VARBINARY", "TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB", "GEOMETRY", "VECTOR":
		return b, nil
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR":
		n, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q, %w", typeName, b, err)
		}
		return n, nil
	case "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT", "UNSIGNED BIGINT":
		n, err := strconv.ParseUint(string(b), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q, %w", typeName, b, err)
		}
		return n, nil
	case "DECIMAL":
		// kept as text so wide values keep every digit; encodes as a JSON number
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return nil, fmt.Errorf("invalid %s value %q, %w", typeName, b, err)
		}
		return json.Number(b), nil
	case "FLOAT", "DOUBLE":
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q, %w", typeName, b, err)
		}
		return f, nil
	default:
		return string(b), nil
	}
}

// quotes a MySQL identifier with backticks, doubling any embedded backtick
func quoteIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}
