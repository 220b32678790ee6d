package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"codelab/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

type Client struct {
	db *sql.DB
}

// driverPath maps the store dsn from codelab.yaml onto a modernc driver
// path. Both "sqlite://lessons.db" and a bare file path are accepted;
// ":memory:" opens the transient database the tests use.
func driverPath(dsn string) (string, error) {
	if i := strings.Index(dsn, "://"); i >= 0 {
		if dsn[:i] != "sqlite" {
			return "", fmt.Errorf("dsn scheme %q is not sqlite", dsn[:i])
		}
		dsn = dsn[i+len("://"):]
	}
	if dsn == "" {
		return "", fmt.Errorf("sqlite dsn has no path")
	}
	if dsn == ":memory:" {
		return dsn, nil
	}

	path, query := dsn, ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i:]
	}
	path, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping sqlite path: %w", err)
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}
	return path + query, nil
}

func New(ctx context.Context, dsn string) (*Client, error) {
	driverDSN, err := driverPath(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}
