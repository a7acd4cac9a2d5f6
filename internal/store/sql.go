// Package store persists accepted postings in a relational database.
// Postgres (via the pgx stdlib driver) and SQLite (via modernc, no cgo) are
// both supported; the DSN decides which driver opens.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

// Store is the dedup persistence gateway over a SQL database. The UNIQUE
// (source, req_id) constraint is the single authority for deduplication.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects to the database named by dsn, verifies the connection, and
// ensures the jobs table exists. Postgres-style DSNs use pgx; everything else
// is treated as a SQLite path.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, dialect := driverFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", dialect, err)
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func driverFor(dsn string) (driver, dialect string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dialectPostgres
	}
	return "sqlite", dialectSQLite
}

func (s *Store) ensureSchema(ctx context.Context) error {
	// Only the surrogate id column needs dialect-specific DDL.
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == dialectPostgres {
		idColumn = "BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY"
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS jobs (
		id         %s,
		title      TEXT NOT NULL,
		company    TEXT NOT NULL,
		location   TEXT,
		url        TEXT NOT NULL,
		posted_at  TIMESTAMP,
		req_id     TEXT NOT NULL,
		source     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		CONSTRAINT uq_jobs_source_req UNIQUE (source, req_id)
	)`, idColumn)

	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("creating jobs table: %w", err)
	}
	return nil
}

// bind rewrites ? placeholders to $N for Postgres.
func (s *Store) bind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InsertNew stores each candidate that carries both a req_id and a url,
// skipping natural-key duplicates silently, and returns the newly inserted
// jobs in candidate order. Each candidate commits on its own: one failure
// neither rolls back nor blocks the others, and concurrent cycles inserting
// the same posting leave at most one row.
func (s *Store) InsertNew(ctx context.Context, candidates []model.Posting) ([]model.Job, error) {
	insert := s.bind(`INSERT INTO jobs (title, company, location, url, posted_at, req_id, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, req_id) DO NOTHING
		RETURNING id`)

	var inserted []model.Job
	for _, c := range candidates {
		if c.ReqID == "" || c.URL == "" {
			continue
		}

		company := c.Company
		if company == "" {
			company = "Unknown"
		}

		var location any
		if c.Location != "" {
			location = c.Location
		}
		var postedAt any
		if c.PostedAt != nil {
			postedAt = c.PostedAt.UTC()
		}
		createdAt := time.Now().UTC()

		var id int64
		err := s.db.QueryRowContext(ctx, insert,
			c.Title, company, location, c.URL, postedAt, c.ReqID, string(c.Source), createdAt,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict on the natural key: already stored, expected outcome.
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("inserting job %s/%s: %w", c.Source, c.ReqID, err)
		}

		inserted = append(inserted, model.Job{
			ID:        id,
			Title:     c.Title,
			Company:   company,
			Location:  c.Location,
			URL:       c.URL,
			PostedAt:  c.PostedAt,
			ReqID:     c.ReqID,
			Source:    c.Source,
			CreatedAt: createdAt,
		})
	}
	return inserted, nil
}

// ListRecent returns stored jobs ordered by posted_at descending with nulls
// last, then created_at descending. limit is clamped to [1, 200].
func (s *Store) ListRecent(ctx context.Context, limit int) ([]model.Job, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}

	query := s.bind(`SELECT id, title, company, location, url, posted_at, req_id, source, created_at
		FROM jobs
		ORDER BY posted_at DESC NULLS LAST, created_at DESC
		LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			job      model.Job
			location sql.NullString
			postedAt sql.NullTime
			source   string
		)
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &location, &job.URL, &postedAt, &job.ReqID, &source, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		job.Location = location.String
		job.Source = model.Source(source)
		if postedAt.Valid {
			t := postedAt.Time.UTC()
			job.PostedAt = &t
		}
		job.CreatedAt = job.CreatedAt.UTC()
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
