package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bus-schedule/internal/schedule"
	"bus-schedule/internal/timeofday"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// FetchCatalog reads every departure and its stops. Departures come back in
// position order; stops in sequence order.
func FetchCatalog(ctx context.Context, db *sql.DB) (*schedule.Catalog, error) {
	q := `SELECT id, name, COALESCE(start_time::text, '') FROM departures ORDER BY position, id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query departures: %w", err)
	}
	defer rows.Close()

	cat := &schedule.Catalog{}
	index := make(map[string]int)
	for rows.Next() {
		var d schedule.Departure
		var start string
		if err := rows.Scan(&d.ID, &d.Name, &start); err != nil {
			return nil, err
		}
		d.StartTime = clockText(start)
		index[d.ID] = len(cat.Departures)
		cat.Departures = append(cat.Departures, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cat.Departures) == 0 {
		return cat, nil
	}

	if err := fetchStops(ctx, db, cat, index); err != nil {
		return nil, err
	}
	return cat, nil
}

func fetchStops(ctx context.Context, db *sql.DB, cat *schedule.Catalog, index map[string]int) error {
	q := `
SELECT departure_id, stop_name, COALESCE(stop_time::text, '')
FROM departure_stops
ORDER BY departure_id, seq`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("query departure_stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var depID, name, at string
		if err := rows.Scan(&depID, &name, &at); err != nil {
			return err
		}
		i, ok := index[depID]
		if !ok {
			// Stops for a departure that is not in the departures table.
			continue
		}
		cat.Departures[i].Stops = append(cat.Departures[i].Stops, schedule.Stop{Name: name, Time: clockText(at)})
	}
	return rows.Err()
}

// clockText turns "HH:MM", "HH:MM:SS" (a Postgres time column) or "h:mm am"
// into "HH:MM". Anything else is passed through for validation to reject.
func clockText(s string) string {
	s = strings.TrimSpace(s)
	if n, err := timeofday.Normalize(s); err == nil {
		return n
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return s
	}
	h, herr := strconv.Atoi(parts[0])
	m, merr := strconv.Atoi(parts[1])
	if herr != nil || merr != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
