package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SusheelSathyaraj/TableMigrator/config"
	"github.com/SusheelSathyaraj/TableMigrator/database"
	"github.com/SusheelSathyaraj/TableMigrator/migration"
	"github.com/SusheelSathyaraj/TableMigrator/monitoring"
	"github.com/sirupsen/logrus"
)

// supported destinations, the first one is the default
var supportedTargets = []string{"supabase", "postgresql", "mongodb"}

// validate the target flag
func validateInput(target string) error {
	if target == "" {
		return fmt.Errorf("target must be specified")
	}
	if !isValidDatabase(target, supportedTargets) {
		return fmt.Errorf("invalid target database type %s", target)
	}
	return nil
}

func isValidDatabase(db string, slice []string) bool {
	for _, v := range slice {
		if strings.EqualFold(v, db) {
			return true
		}
	}
	return false
}

// connectors opens the two ends of the migration; tests swap them for fakes
type connectors struct {
	source      func(ctx context.Context, cfg *config.Config) (database.SourceStore, error)
	destination func(ctx context.Context, target string, cfg *config.Config) (database.Destination, error)
}

var defaultConnectors = connectors{
	source:      openSource,
	destination: openDestination,
}

func openSource(ctx context.Context, cfg *config.Config) (database.SourceStore, error) {
	client := database.NewMySQLClientFromConfig(cfg)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func openDestination(ctx context.Context, target string, cfg *config.Config) (database.Destination, error) {
	switch strings.ToLower(target) {
	case "supabase":
		client := database.NewSupabaseClientFromConfig(cfg)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil
	case "postgresql":
		client := database.NewPostgreSQLClientFromConfig(cfg)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil
	case "mongodb":
		client := database.NewMongoDBClientFromConfig(cfg)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported database target type %s", target)
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.LookupEnv, os.Stdout, os.Stderr, defaultConnectors))
}

// run is the whole program; it returns the process exit code.
func run(args []string, lookup config.LookupFunc, stdout, stderr io.Writer, conn connectors) int {
	flags := flag.NewFlagSet("tablemigrator", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to config file (built-in defaults and table list when empty)")
	target := flags.String("target", supportedTargets[0], "Target database type (supabase,postgresql,mongodb)")
	debug := flags.Bool("debug", false, "Enable debug logging")

	//parsing the user input
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if err := validateInput(*target); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		flags.Usage()
		return 2
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			logger.Errorf("Error loading config %v", err)
			return 1
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		logger.Errorf("Error loading config %v", err)
		return 1
	}

	//credentials are checked before anything is opened
	if strings.EqualFold(*target, "supabase") {
		supabase, err := config.LookupSupabase(lookup)
		if err != nil {
			if errors.Is(err, config.ErrMissingCredentials) {
				fmt.Fprintf(stderr, "Set %s and %s env vars\n", config.EnvSupabaseURL, config.EnvSupabaseServiceKey)
			}
			logger.Error(err)
			return 1
		}
		cfg.Supabase = supabase
	}

	ctx := context.Background()

	logger.Debugf("connecting to mysql %s:%d/%s", cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.DBName)
	source, err := conn.source(ctx, cfg)
	if err != nil {
		logger.Errorf("Failed to connect to mysql database, %v", err)
		return 1
	}
	defer source.Close()

	destination, err := conn.destination(ctx, *target, cfg)
	if err != nil {
		logger.Errorf("Failed to connect to %s database, %v", *target, err)
		return 1
	}
	defer destination.Close()

	inPlace := false
	if f, ok := stdout.(*os.File); ok {
		inPlace = monitoring.IsTerminal(f)
	}

	migrator := migration.NewMigrator(migration.MigrationConfig{
		BatchSize: cfg.BatchSize,
		Reporter:  monitoring.NewConsoleReporter(stdout, logger, inPlace),
		Logger:    logger,
	}, source, destination)

	if _, err := migrator.Run(ctx, cfg.Tables); err != nil {
		logger.Errorf("Migration failed, %v", err)
		return 1
	}
	return 0
}
