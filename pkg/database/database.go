package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Client holds the database driver
type Client struct {
	Driver *entsql.Driver
	db     *sql.DB // Underlying database for pool stats
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxOpenConns    int           // Maximum number of open connections
	MaxIdleConns    int           // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum amount of time a connection may be reused
	ConnMaxIdleTime time.Duration // Maximum amount of time a connection may be idle
}

// SSLConfig holds SSL/TLS configuration for database connections
type SSLConfig struct {
	Mode         string // disable, require, verify-ca, verify-full
	CertPath     string // Path to client certificate
	KeyPath      string // Path to client key
	RootCertPath string // Path to root CA certificate
}

// DefaultPoolConfig returns sensible defaults for connection pooling
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// SQLitePoolConfig pins SQLite to a single long-lived connection so
// in-memory databases survive for the life of the client.
func SQLitePoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// ParseURL resolves the driver name and DSN for a database URL.
// postgres:// and postgresql:// URLs use lib/pq; sqlite://path,
// sqlite3://path and file: DSNs use go-sqlite3 with foreign keys on.
func ParseURL(databaseURL string) (driverName, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return dialect.Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return dialect.SQLite, sqliteDSN("file:" + strings.TrimPrefix(databaseURL, "sqlite3://")), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return dialect.SQLite, sqliteDSN("file:" + strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return dialect.SQLite, sqliteDSN(databaseURL), nil
	default:
		return "", "", fmt.Errorf("unsupported database URL %q", databaseURL)
	}
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_fk=1"
	}
	return dsn + "?_fk=1"
}

// BuildConnectionString builds a PostgreSQL connection string with SSL parameters
func BuildConnectionString(baseURL string, sslCfg *SSLConfig) (string, error) {
	// If no SSL config provided, return base URL as-is
	if sslCfg == nil {
		return baseURL, nil
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}

	query := parsedURL.Query()

	// Set SSL mode (overrides any existing sslmode in URL)
	if sslCfg.Mode != "" {
		query.Set("sslmode", sslCfg.Mode)
	}
	if sslCfg.CertPath != "" {
		query.Set("sslcert", sslCfg.CertPath)
	}
	if sslCfg.KeyPath != "" {
		query.Set("sslkey", sslCfg.KeyPath)
	}
	if sslCfg.RootCertPath != "" {
		query.Set("sslrootcert", sslCfg.RootCertPath)
	}

	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// NewClient creates a new database client with connection pooling
func NewClient(databaseURL string) (*Client, error) {
	return NewClientWithPoolAndSSL(databaseURL, nil, nil)
}

// NewClientWithSSL creates a new database client with SSL configuration
func NewClientWithSSL(databaseURL string, sslCfg *SSLConfig) (*Client, error) {
	return NewClientWithPoolAndSSL(databaseURL, nil, sslCfg)
}

// NewClientWithPoolAndSSL creates a new database client with custom pool and
// SSL configuration. A nil pool selects the default for the driver. SSL
// settings only apply to PostgreSQL.
func NewClientWithPoolAndSSL(databaseURL string, poolCfg *PoolConfig, sslCfg *SSLConfig) (*Client, error) {
	driverName, connStr, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	pool := DefaultPoolConfig()
	if driverName == dialect.SQLite {
		pool = SQLitePoolConfig()
	} else {
		connStr, err = BuildConnectionString(connStr, sslCfg)
		if err != nil {
			return nil, fmt.Errorf("failed building connection string: %w", err)
		}
		if sslCfg != nil && sslCfg.Mode != "" && sslCfg.Mode != "disable" {
			log.Printf("🔒 Database SSL enabled (mode: %s)", sslCfg.Mode)
		}
	}
	if poolCfg != nil {
		pool = *poolCfg
	}

	return Open(driverName, connStr, pool)
}

// Open opens a client for an explicit driver name and DSN
func Open(driverName, dsn string, pool PoolConfig) (*Client, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to %s: %w", driverName, err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	log.Printf("✅ Database connection pool configured (driver: %s, max_open: %d, max_idle: %d)",
		driverName, pool.MaxOpenConns, pool.MaxIdleConns)

	return &Client{
		Driver: entsql.OpenDB(driverName, db),
		db:     db,
	}, nil
}

// Dialect returns the SQL dialect of the connection
func (c *Client) Dialect() string {
	return c.Driver.Dialect()
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.Driver.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (c *Client) Stats() sql.DBStats {
	return c.db.Stats()
}

// WithTx runs fn inside a transaction. The transaction is rolled back when
// fn returns an error or panics, and committed otherwise.
func (c *Client) WithTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := c.Driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint violation
// from either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
