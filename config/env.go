package config

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	EnvSupabaseURL        = "SUPABASE_URL"
	EnvSupabaseServiceKey = "SUPABASE_SERVICE_KEY"

	EnvMySQLHost = "MYSQL_HOST"
	EnvMySQLPort = "MYSQL_PORT"
	EnvMySQLUser = "MYSQL_USER"
	EnvMySQLPass = "MYSQL_PASS"
	EnvMySQLName = "MYSQL_NAME"
)

var ErrMissingCredentials = errors.New("missing destination credentials")

// LookupFunc has the shape of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// LookupSupabase reads the destination endpoint and service key. Both are required.
func LookupSupabase(lookup LookupFunc) (SupabaseConfig, error) {
	url, _ := lookup(EnvSupabaseURL)
	key, _ := lookup(EnvSupabaseServiceKey)

	var missing []string
	if url == "" {
		missing = append(missing, EnvSupabaseURL)
	}
	if key == "" {
		missing = append(missing, EnvSupabaseServiceKey)
	}
	if len(missing) > 0 {
		return SupabaseConfig{}, fmt.Errorf("%w: set %v env vars", ErrMissingCredentials, missing)
	}
	return SupabaseConfig{URL: url, ServiceKey: key}, nil
}

// ApplyEnv overrides the MySQL settings with any MYSQL_* variables that are set
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvMySQLHost); ok && v != "" {
		c.MySQL.Host = v
	}
	if v, ok := lookup(EnvMySQLPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMySQLPort, v, err)
		}
		c.MySQL.Port = port
	}
	if v, ok := lookup(EnvMySQLUser); ok && v != "" {
		c.MySQL.User = v
	}
	if v, ok := lookup(EnvMySQLPass); ok {
		c.MySQL.Password = v
	}
	if v, ok := lookup(EnvMySQLName); ok && v != "" {
		c.MySQL.DBName = v
	}
	return nil
}
