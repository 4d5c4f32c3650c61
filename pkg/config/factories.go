package config

import (
	"context"
	"fmt"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/dbpool"
	"github.com/marmos91/deckd/pkg/metrics"
	"github.com/mitchellh/mapstructure"
)

// CreateDBPool opens the relational connection pool described by cfg.
//
// The Type field selects the driver; the matching driver-specific map is
// decoded into the driver's option struct and turned into a DSN. Every
// connection is established before CreateDBPool returns, so any failure here
// means the store is unreachable and startup should abort.
//
// Supported types:
//   - "sqlite": modernc.org/sqlite, file path
//   - "mysql": go-sql-driver/mysql over TCP
func CreateDBPool(ctx context.Context, cfg *DatabaseConfig, log *logger.Logger, m metrics.DBPoolMetrics) (*dbpool.SQLPool, error) {
	if log == nil {
		log = logger.Discard()
	}

	var sqlCfg dbpool.SQLConfig

	switch cfg.Type {
	case "sqlite":
		opts, err := decodeSQLiteOptions(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to decode sqlite config: %w", err)
		}
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite: path is required")
		}
		sqlCfg = dbpool.SQLConfig{Driver: dbpool.DriverSQLite, DSN: opts.DSN()}
	case "mysql":
		opts, err := decodeMySQLOptions(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("failed to decode mysql config: %w", err)
		}
		sqlCfg = dbpool.SQLConfig{Driver: dbpool.DriverMySQL, DSN: opts.DSN()}
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}

	sqlCfg.Size = cfg.PoolSize

	pool, err := dbpool.OpenSQL(ctx, sqlCfg, log, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	log.Info("Database pool ready: type=%s size=%d", cfg.Type, pool.Stats().Size)
	return pool, nil
}

func decodeSQLiteOptions(options map[string]any) (dbpool.SQLiteOptions, error) {
	var opts dbpool.SQLiteOptions
	err := decodeOptions(options, &opts)
	return opts, err
}

func decodeMySQLOptions(options map[string]any) (dbpool.MySQLOptions, error) {
	var opts dbpool.MySQLOptions
	err := decodeOptions(options, &opts)
	return opts, err
}

// decodeOptions decodes a driver-specific map. Weak typing lets values that
// arrive as strings from environment variables populate numeric fields.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}
