package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBatchSize is the number of rows sent to the destination per bulk insert.
const DefaultBatchSize = 500

// TableDescriptor pairs a table name with the ordered columns to migrate
type TableDescriptor struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Charset  string `yaml:"charset"`
}

type PostgreSQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type MongoDBConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"dbname"`
}

// MongoDatabase is the configured MongoDB database, or the MySQL database name
// when none is set. It is resolved on use so MYSQL_NAME overrides carry over.
func (c *Config) MongoDatabase() string {
	if c.MongoDB.DBName != "" {
		return c.MongoDB.DBName
	}
	return c.MySQL.DBName
}

// SupabaseConfig is never read from the config file, only from the environment
type SupabaseConfig struct {
	URL        string `yaml:"-"`
	ServiceKey string `yaml:"-"`
}

// config struct to map config.yaml
type Config struct {
	MySQL      MySQLConfig       `yaml:"mysql"`
	PostgreSQL PostgreSQLConfig  `yaml:"postgresql"`
	MongoDB    MongoDBConfig     `yaml:"mongodb"`
	Supabase   SupabaseConfig    `yaml:"-"`
	BatchSize  int               `yaml:"batch_size"`
	Tables     []TableDescriptor `yaml:"tables"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func LoadConfig(filepath string) (*Config, error) {

	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file, %w", err)
	}

	var config Config
	err = yaml.Unmarshal(content, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// fills every zero field with the built-in value
func (c *Config) applyDefaults() {
	if c.MySQL.Host == "" {
		c.MySQL.Host = "localhost"
	}
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.User == "" {
		c.MySQL.User = "root"
	}
	if c.MySQL.DBName == "" {
		c.MySQL.DBName = "preseleccionados"
	}
	if c.MySQL.Charset == "" {
		c.MySQL.Charset = "utf8mb4"
	}

	if c.PostgreSQL.Host == "" {
		c.PostgreSQL.Host = "localhost"
	}
	if c.PostgreSQL.Port == 0 {
		c.PostgreSQL.Port = 5432
	}
	if c.PostgreSQL.SSLMode == "" {
		c.PostgreSQL.SSLMode = "disable"
	}

	if c.MongoDB.URI == "" {
		c.MongoDB.URI = "mongodb://localhost:27017"
	}

	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if len(c.Tables) == 0 {
		c.Tables = DefaultManifest()
	}
}

// Validate checks the manifest shape. Table and column existence is left to the source database.
func (c *Config) Validate() error {
	for i, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("table %d in manifest has no name", i)
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %s in manifest has no columns", t.Name)
		}
	}
	return nil
}
