// Package warehouse provides an optional direct read-only connection to
// the analytics warehouse, used to preview the rows a resolved SQL query
// would return before submitting a full experiment. The experiment itself
// always runs server-side; this is display-only.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/ignite/campaign-intel/internal/config"
)

// DefaultPreviewLimit caps preview result sets.
const DefaultPreviewLimit = 50

// QueryPreview is a small, display-ready slice of a query's result set.
type QueryPreview struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Truncated bool       `json:"truncated"`
}

// Client provides read-only access to the warehouse.
type Client struct {
	db *sql.DB
}

// NewClient creates a warehouse client from configuration.
func NewClient(cfg config.WarehouseConfig) (*Client, error) {
	// DSN format: user:password@account/database/schema?warehouse=xxx
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s",
		cfg.User,
		cfg.Password,
		cfg.Account,
		cfg.Database,
		cfg.Schema,
	)
	if cfg.Warehouse != "" {
		dsn += "?warehouse=" + cfg.Warehouse
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{db: db}, nil
}

// NewClientWithDB wraps an existing database handle (useful for testing).
func NewClientWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// PreviewQuery runs a resolved SELECT statement and returns up to limit
// rows rendered as strings. Only read statements are accepted; anything
// else is rejected before touching the warehouse.
func (c *Client) PreviewQuery(ctx context.Context, sqlText string, limit int) (*QueryPreview, error) {
	stmt := strings.TrimSpace(sqlText)
	if stmt == "" {
		return nil, fmt.Errorf("empty query")
	}
	if !isReadStatement(stmt) {
		return nil, fmt.Errorf("only SELECT statements can be previewed")
	}
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	// Fetch one extra row to detect truncation
	wrapped := fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", strings.TrimSuffix(stmt, ";"), limit+1)

	rows, err := c.db.QueryContext(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("preview query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	preview := &QueryPreview{Columns: cols, Rows: [][]string{}}
	values := make([]sql.NullString, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if len(preview.Rows) == limit {
			preview.Truncated = true
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		preview.Rows = append(preview.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("preview query failed: %w", err)
	}

	return preview, nil
}

// isReadStatement accepts SELECT and WITH ... SELECT statements only.
func isReadStatement(stmt string) bool {
	head := strings.ToUpper(stmt)
	return strings.HasPrefix(head, "SELECT") || strings.HasPrefix(head, "WITH")
}
