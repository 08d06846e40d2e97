package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"bus-schedule/internal/schedule"
)

// LoadCatalog connects once, reads the catalog and disconnects. When match is
// set, the catalog database is the latest successful import whose name
// contains match, looked up through the cluster's "postgres" database.
func LoadCatalog(ctx context.Context, dsn, match string) (*schedule.Catalog, error) {
	if match != "" {
		name, err := resolveCatalogDB(ctx, dsn, match)
		if err != nil {
			return nil, err
		}
		if dsn, err = WithDBName(dsn, name); err != nil {
			return nil, fmt.Errorf("compose DSN: %w", err)
		}
		log.Info().Str("database", name).Str("match", match).Msg("Using latest catalog import")
	}

	conn, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	defer conn.Close()
	if err := Ping(ctx, conn); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return FetchCatalog(ctx, conn)
}

func resolveCatalogDB(ctx context.Context, dsn, match string) (string, error) {
	rootDSN, err := WithDBName(dsn, "postgres")
	if err != nil {
		return "", fmt.Errorf("invalid base DSN: %w", err)
	}
	meta, err := Open(rootDSN)
	if err != nil {
		return "", fmt.Errorf("db open (meta): %w", err)
	}
	defer meta.Close()
	if err := Ping(ctx, meta); err != nil {
		return "", fmt.Errorf("db ping (meta): %w", err)
	}
	return ResolveLatestImportDBName(ctx, meta, match)
}

// ResolveLatestImportDBName returns the most recently imported db_name from
// public.latest_successful_imports that contains match (case-insensitive).
func ResolveLatestImportDBName(ctx context.Context, meta *sql.DB, match string) (string, error) {
	match = strings.TrimSpace(match)
	if match == "" {
		return "", fmt.Errorf("catalog database match is required")
	}
	q := `
SELECT db_name
FROM public.latest_successful_imports
WHERE db_name ILIKE '%' || $1 || '%'
ORDER BY imported_at DESC
LIMIT 1`
	var name sql.NullString
	if err := meta.QueryRowContext(ctx, q, match).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no catalog database like %q", match)
		}
		return "", err
	}
	if !name.Valid || name.String == "" {
		return "", fmt.Errorf("empty db_name for catalog like %q", match)
	}
	return name.String, nil
}

// WithDBName swaps the database in a postgres:// DSN. A DSN without a scheme
// is treated as postgres://.
func WithDBName(dsn, database string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("empty DSN")
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported DSN scheme %q", u.Scheme)
	}
	u.Path = "/" + strings.TrimPrefix(database, "/")
	return u.String(), nil
}
