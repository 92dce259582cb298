package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/SusheelSathyaraj/TableMigrator/config"
	"github.com/lib/pq"
)

// PostgreSQLClient writes rows straight into PostgreSQL tables.
type PostgreSQLClient struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
	SSLMode  string
	DB       *sql.DB
}

var _ Destination = (*PostgreSQLClient)(nil)

func NewPostgreSQLClient(user, password, host string, port int, dbname string) *PostgreSQLClient {
	return &PostgreSQLClient{
		User:     user,
		Password: password,
		Host:     host,
		Port:     port,
		DBName:   dbname,
		SSLMode:  "disable",
	}
}

func NewPostgreSQLClientFromConfig(cfg *config.Config) *PostgreSQLClient {
	return &PostgreSQLClient{
		User:     cfg.PostgreSQL.User,
		Password: cfg.PostgreSQL.Password,
		Host:     cfg.PostgreSQL.Host,
		Port:     cfg.PostgreSQL.Port,
		DBName:   cfg.PostgreSQL.DBName,
		SSLMode:  cfg.PostgreSQL.SSLMode,
	}
}

// connect to Postgresql database
func (p *PostgreSQLClient) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open Postgresql connection, %w", err)
	}

	//testing connection
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping postgresql database, %w", err)
	}

	db.SetMaxOpenConns(1)

	p.DB = db
	return nil
}

// Close the database connection
func (p *PostgreSQLClient) Close() error {
	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}

// InsertBatch writes all rows with a single INSERT statement, so a batch is stored entirely or not at all.
// Columns are taken from the first row in sorted order; every row must carry the same keys.
func (p *PostgreSQLClient) InsertBatch(ctx context.Context, table string, rows []Row) error {
	if p.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if len(rows) == 0 {
		return nil
	}

	query, args, err := buildInsert(table, rows)
	if err != nil {
		return err
	}

	if _, err := p.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %d rows into %s, %w", len(rows), table, err)
	}
	return nil
}

// builds INSERT INTO "t" ("a", "b") VALUES ($1, $2), ($3, $4)
func buildInsert(table string, rows []Row) (string, []interface{}, error) {
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	quotedColumns := make([]string, len(columns))
	for i, col := range columns {
		quotedColumns[i] = pq.QuoteIdentifier(col)
	}

	args := make([]interface{}, 0, len(rows)*len(columns))
	tuples := make([]string, len(rows))
	for r, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), len(columns))
		}

		placeholder := make([]string, len(columns))
		for i, col := range columns {
			val, ok := row[col]
			if !ok {
				return "", nil, fmt.Errorf("row %d is missing column %s", r, col)
			}
			args = append(args, val)
			placeholder[i] = fmt.Sprintf("$%d", len(args))
		}
		tuples[r] = "(" + strings.Join(placeholder, ", ") + ")"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table),
		strings.Join(quotedColumns, ", "),
		strings.Join(tuples, ", "),
	)
	return query, args, nil
}
