package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file, %v", err)
	}
	return path
}

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("Expected batch size %d, got %d", DefaultBatchSize, cfg.BatchSize)
	}
	if cfg.MySQL.Host != "localhost" || cfg.MySQL.Port != 3306 || cfg.MySQL.User != "root" {
		t.Errorf("Unexpected MySQL defaults %+v", cfg.MySQL)
	}
	if cfg.MySQL.DBName != "preseleccionados" || cfg.MySQL.Charset != "utf8mb4" {
		t.Errorf("Unexpected MySQL defaults %+v", cfg.MySQL)
	}
	if len(cfg.Tables) != 7 {
		t.Fatalf("Expected 7 tables in default manifest, got %d", len(cfg.Tables))
	}
	if cfg.Tables[0].Name != "preseleccionados" || cfg.Tables[6].Name != "causales_descalificacion" {
		t.Errorf("Default manifest out of order: first %s, last %s", cfg.Tables[0].Name, cfg.Tables[6].Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
mysql:
  host: db.internal
  port: 3307
  user: migrator
  password: secret
  dbname: becas
batch_size: 200
tables:
  - name: users
    columns: [id, name, active]
  - name: orders
    columns: [id, user_id]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.MySQL.Host != "db.internal" || cfg.MySQL.Port != 3307 || cfg.MySQL.DBName != "becas" {
		t.Errorf("MySQL settings not loaded: %+v", cfg.MySQL)
	}
	if cfg.MySQL.Charset != "utf8mb4" {
		t.Errorf("Expected default charset, got %s", cfg.MySQL.Charset)
	}
	if cfg.MongoDatabase() != "becas" {
		t.Errorf("Expected mongodb database to follow mysql database, got %s", cfg.MongoDatabase())
	}
	if cfg.BatchSize != 200 {
		t.Errorf("Expected batch size 200, got %d", cfg.BatchSize)
	}
	if len(cfg.Tables) != 2 || cfg.Tables[1].Name != "orders" {
		t.Fatalf("Manifest not loaded in order: %+v", cfg.Tables)
	}
	if got := cfg.Tables[0].Columns; len(got) != 3 || got[2] != "active" {
		t.Errorf("Columns not loaded in order: %v", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "tables: [unterminated"},
		{"missing name", "tables:\n  - columns: [id]\n"},
		{"missing columns", "tables:\n  - name: users\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.content)); err == nil {
				t.Errorf("Expected error for %s, got nil", tc.name)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file, got nil")
	}
}

func TestLookupSupabase(t *testing.T) {
	tests := []struct {
		env    map[string]string
		expect bool
	}{
		{map[string]string{}, false},
		{map[string]string{EnvSupabaseURL: "https://x.supabase.co"}, false},
		{map[string]string{EnvSupabaseServiceKey: "key"}, false},
		{map[string]string{EnvSupabaseURL: "", EnvSupabaseServiceKey: "key"}, false},
		{map[string]string{EnvSupabaseURL: "https://x.supabase.co", EnvSupabaseServiceKey: "key"}, true},
	}

	for i, tc := range tests {
		cfg, err := LookupSupabase(lookupFrom(tc.env))
		if (err == nil) != tc.expect {
			t.Errorf("[Test case: %d] expected success: %v, got error: %v", i+1, tc.expect, err)
			continue
		}
		if err != nil && !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("[Test case: %d] expected ErrMissingCredentials, got %v", i+1, err)
		}
		if err == nil && (cfg.URL != tc.env[EnvSupabaseURL] || cfg.ServiceKey != tc.env[EnvSupabaseServiceKey]) {
			t.Errorf("[Test case: %d] credentials not copied: %+v", i+1, cfg)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvMySQLHost: "10.0.0.5",
		EnvMySQLPort: "3310",
		EnvMySQLUser: "reader",
		EnvMySQLPass: "pw",
		EnvMySQLName: "archive",
	}))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := MySQLConfig{Host: "10.0.0.5", Port: 3310, User: "reader", Password: "pw", DBName: "archive", Charset: "utf8mb4"}
	if cfg.MySQL != want {
		t.Errorf("Expected %+v, got %+v", want, cfg.MySQL)
	}

	if cfg.MongoDatabase() != "archive" {
		t.Errorf("Expected mongodb database to follow MYSQL_NAME, got %s", cfg.MongoDatabase())
	}

	explicit := Default()
	explicit.MongoDB.DBName = "documents"
	if err := explicit.ApplyEnv(lookupFrom(map[string]string{EnvMySQLName: "archive"})); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if explicit.MongoDatabase() != "documents" {
		t.Errorf("Expected configured mongodb database to win, got %s", explicit.MongoDatabase())
	}

	if err := Default().ApplyEnv(lookupFrom(map[string]string{EnvMySQLPort: "abc"})); err == nil {
		t.Errorf("Expected error for invalid port, got nil")
	}
}
