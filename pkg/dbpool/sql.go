package dbpool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/metrics"
)

// Supported database/sql drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// MySQLOptions holds the MySQL connection parameters.
type MySQLOptions struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Charset  string `mapstructure:"charset"`
}

// DSN renders the options as a go-sql-driver/mysql data source name.
func (o MySQLOptions) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	cfg.DBName = o.Name
	cfg.ParseTime = true
	if o.Charset != "" {
		cfg.Params = map[string]string{"charset": o.Charset}
	}
	return cfg.FormatDSN()
}

// SQLiteOptions holds the SQLite database location.
type SQLiteOptions struct {
	Path string `mapstructure:"path"`
}

// DSN returns the file path; pragmas are applied per connection.
func (o SQLiteOptions) DSN() string {
	return o.Path
}

// sqlitePragmas run on every pinned SQLite connection.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// SQLConfig selects a driver and data source for OpenSQL.
type SQLConfig struct {
	Driver string
	DSN    string
	Size   int
}

// SQLPool is a Pool of pinned *sql.Conn handles from one *sql.DB.
type SQLPool struct {
	*Pool[*sql.Conn]
	db *sql.DB
}

// OpenSQL opens cfg.Driver with cfg.DSN, caps the DB at cfg.Size open
// connections and pins that many *sql.Conn, each pinged at creation. Any
// failure closes what was opened.
func OpenSQL(ctx context.Context, cfg SQLConfig, log *logger.Logger, m metrics.DBPoolMetrics) (*SQLPool, error) {
	if cfg.Driver != DriverMySQL && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	size := cfg.Size
	if size < 1 {
		size = 1
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(0)

	factory := func(ctx context.Context) (*sql.Conn, error) {
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("ping: %w", err)
		}
		if cfg.Driver == DriverSQLite {
			for _, pragma := range sqlitePragmas {
				if _, err := conn.ExecContext(ctx, pragma); err != nil {
					_ = conn.Close()
					return nil, fmt.Errorf("set pragma: %w", err)
				}
			}
		}
		return conn, nil
	}

	pool, err := New(ctx, size, factory, log, m)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s connection pool: %w", cfg.Driver, err)
	}

	return &SQLPool{Pool: pool, db: db}, nil
}

// DB returns the underlying handle for statistics; all queries should go
// through leased connections.
func (p *SQLPool) DB() *sql.DB {
	return p.db
}

// Ping checks one leased connection.
func (p *SQLPool) Ping(ctx context.Context) error {
	return p.With(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Close closes the pooled connections, then the database handle.
func (p *SQLPool) Close() error {
	poolErr := p.Pool.Close()
	dbErr := p.db.Close()
	return errors.Join(poolErr, dbErr)
}
