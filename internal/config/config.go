package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources.
const (
	SourceBundled  = "bundled"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	ListenAddr    string
	CatalogSource string
	CatalogPath   string
	DatabaseURL   string
	CatalogDB     string
	OverridesPath string
	NATSURL       string
	NATSSubject   string
	TickInterval  time.Duration
	MetricsAddr   string
	Location      *time.Location
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", ":8080")

	cfg.CatalogSource = strings.ToLower(strings.TrimSpace(getenvDefault("CATALOG_SOURCE", SourceBundled)))
	cfg.CatalogPath = os.Getenv("CATALOG_PATH")
	switch cfg.CatalogSource {
	case SourceBundled:
	case SourceFile:
		if cfg.CatalogPath == "" {
			return nil, errors.New("CATALOG_PATH must be set when CATALOG_SOURCE=file")
		}
	case SourcePostgres:
		dsn, err := databaseURL()
		if err != nil {
			return nil, err
		}
		cfg.DatabaseURL = dsn
	default:
		return nil, fmt.Errorf("invalid CATALOG_SOURCE: %q", cfg.CatalogSource)
	}

	// Name fragment of the latest imported catalog database
	cfg.CatalogDB = firstNonEmpty(os.Getenv("CATALOG_DB"), os.Getenv("CITY"))

	cfg.OverridesPath = os.Getenv("OVERRIDES_PATH")

	// Empty disables the overrides feed
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSSubject = getenvDefault("NATS_SUBJECT", "schedule.overrides")

	if v := os.Getenv("TICK_INTERVAL_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return nil, fmt.Errorf("invalid TICK_INTERVAL_SEC: %q", v)
		}
		cfg.TickInterval = time.Duration(sec) * time.Second
	} else {
		cfg.TickInterval = 60 * time.Second
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	tzName := getenvDefault("TZ", "")
	if tzName == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL / PG_DSN, else builds a DSN from PG* vars.
func databaseURL() (string, error) {
	if dsn := firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN")); dsn != "" {
		return dsn, nil
	}
	host := getenvDefault("PGHOST", "127.0.0.1")
	port := getenvDefault("PGPORT", "5432")
	user := getenvDefault("PGUSER", "postgres")
	pass := os.Getenv("PGPASSWORD")
	db := os.Getenv("PGDATABASE")
	if db == "" && firstNonEmpty(os.Getenv("CATALOG_DB"), os.Getenv("CITY")) != "" {
		db = "postgres"
	}
	if db == "" {
		return "", errors.New("PGDATABASE or DATABASE_URL must be set when CATALOG_SOURCE=postgres")
	}
	sslmode := getenvDefault("PGSSLMODE", "disable")
	if pass != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode), nil
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode), nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
