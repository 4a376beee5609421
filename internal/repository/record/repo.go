package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/casematch/internal/domain"
	domrecord "github.com/kailas-cloud/casematch/internal/domain/record"
)

const (
	tableMissing      = "missing_persons"
	tableUnidentified = "unidentified_bodies"
)

// Repo reads case records from the SQLite case database.
type Repo struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	if dsn == "" {
		return nil, errors.New("records dsn is required")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+"_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	// SQLite allows a single writer; keep one connection so in-memory databases stay shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Repo{db: db}, nil
}

// New wraps an already opened database.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Close releases the database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Get returns the record with the given PID.
// The PID prefix selects the register; an unknown prefix searches both,
// unidentified bodies first.
func (r *Repo) Get(ctx context.Context, pid string) (domrecord.Record, error) {
	kinds := []domrecord.Kind{domrecord.UnidentifiedBody, domrecord.MissingPerson}
	if k, ok := domrecord.KindFromPID(pid); ok {
		kinds = []domrecord.Kind{k}
	}

	for _, k := range kinds {
		rec, err := r.get(ctx, k, pid)
		if errors.Is(err, domain.ErrRecordNotFound) {
			continue
		}
		return rec, err
	}
	return domrecord.Record{}, fmt.Errorf("record %q: %w", pid, domain.ErrRecordNotFound)
}

func (r *Repo) get(ctx context.Context, k domrecord.Kind, pid string) (domrecord.Record, error) {
	q := selectQuery(k) + " WHERE pid = ?"
	row := r.db.QueryRowContext(ctx, q, pid)
	rec, err := scanRecord(row, k)
	if errors.Is(err, sql.ErrNoRows) {
		return domrecord.Record{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domrecord.Record{}, fmt.Errorf("get %s %q: %w", k, pid, err)
	}
	return rec, nil
}

// List returns up to limit records of kind k with PID greater than after, ordered by PID.
func (r *Repo) List(ctx context.Context, k domrecord.Kind, after string, limit int) ([]domrecord.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := selectQuery(k) + " WHERE pid > ? ORDER BY pid LIMIT ?"
	rows, err := r.db.QueryContext(ctx, q, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", k, err)
	}
	defer rows.Close()

	var out []domrecord.Record
	for rows.Next() {
		rec, err := scanRecord(rows, k)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", k, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", k, err)
	}
	return out, nil
}

// Count returns the number of records in each register, in total and per case status.
// Records without a status are counted under domrecord.StatusUnknown.
func (r *Repo) Count(ctx context.Context) (domrecord.Counts, error) {
	var (
		c   domrecord.Counts
		err error
	)
	if c.MissingByStatus, c.MissingPersons, err = r.countByStatus(ctx, tableMissing); err != nil {
		return domrecord.Counts{}, err
	}
	if c.UnidentifiedByStatus, c.UnidentifiedBodies, err = r.countByStatus(ctx, tableUnidentified); err != nil {
		return domrecord.Counts{}, err
	}
	return c, nil
}

func (r *Repo) countByStatus(ctx context.Context, table string) (map[string]int, int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM "+table+" GROUP BY status")
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}
	defer rows.Close()

	byStatus := make(map[string]int)
	total := 0
	for rows.Next() {
		var (
			status sql.NullString
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, 0, fmt.Errorf("count %s: %w", table, err)
		}
		key := strings.TrimSpace(status.String)
		if key == "" {
			key = domrecord.StatusUnknown
		}
		byStatus[key] += n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}
	return byStatus, total, nil
}
