package arxivhunter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a sqlite cache of fetched metadata. It keeps the fields rows do
// not carry (abstract, date) and backs full-text search.
type Index struct {
	db  *sql.DB
	fts bool
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	x := &Index{db: db}
	if err := x.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return x, nil
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) initSchema() error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			authors    TEXT NOT NULL DEFAULT '',
			category   TEXT NOT NULL DEFAULT '',
			abstract   TEXT NOT NULL DEFAULT '',
			date       TEXT NOT NULL DEFAULT '',
			fetched_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
	`)
	if err != nil {
		return err
	}

	// FTS5 is optional; search falls back to LIKE without it.
	_, err = x.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			title,
			abstract,
			content='records',
			content_rowid='rowid'
		);

		CREATE TRIGGER IF NOT EXISTS records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, title, abstract)
			VALUES (NEW.rowid, NEW.title, NEW.abstract);
		END;

		CREATE TRIGGER IF NOT EXISTS records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract)
			VALUES ('delete', OLD.rowid, OLD.title, OLD.abstract);
		END;

		CREATE TRIGGER IF NOT EXISTS records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract)
			VALUES ('delete', OLD.rowid, OLD.title, OLD.abstract);
			INSERT INTO records_fts(rowid, title, abstract)
			VALUES (NEW.rowid, NEW.title, NEW.abstract);
		END;
	`)
	x.fts = err == nil
	return nil
}

// Put inserts or replaces rec.
func (x *Index) Put(ctx context.Context, rec *Record) error {
	date := ""
	if !rec.Date.IsZero() {
		date = rec.Date.Format("2006-01-02")
	}
	_, err := x.db.ExecContext(ctx, `
		INSERT INTO records (id, title, authors, category, abstract, date, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			category = excluded.category,
			abstract = excluded.abstract,
			date = excluded.date,
			fetched_at = excluded.fetched_at
	`,
		rec.ID,
		rec.Title,
		strings.Join(rec.Authors, "\n"),
		rec.Category,
		rec.Abstract,
		date,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("index %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the indexed record for id, or ErrNotFound. Links are built
// against base.
func (x *Index) Get(ctx context.Context, id, base string) (*Record, error) {
	row := x.db.QueryRowContext(ctx, `
		SELECT id, title, authors, category, abstract, date
		FROM records WHERE id = ?
	`, id)
	rec, err := scanRecord(row, base)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes ids from the index.
func (x *Index) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := x.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
			return fmt.Errorf("unindex %s: %w", id, err)
		}
	}
	return nil
}

// Search returns records whose title or abstract match query, best first.
func (x *Index) Search(ctx context.Context, query, base string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if x.fts {
		recs, err := x.query(ctx, base, `
			SELECT r.id, r.title, r.authors, r.category, r.abstract, r.date
			FROM records r
			JOIN records_fts fts ON r.rowid = fts.rowid
			WHERE records_fts MATCH ?
			ORDER BY rank LIMIT ?
		`, query, limit)
		if err == nil {
			return recs, nil
		}
		// Malformed FTS query syntax: retry as a plain substring search.
	}
	return x.query(ctx, base, `
		SELECT id, title, authors, category, abstract, date
		FROM records
		WHERE title LIKE '%' || ? || '%' OR abstract LIKE '%' || ? || '%'
		ORDER BY id LIMIT ?
	`, query, query, limit)
}

func (x *Index) query(ctx context.Context, base, q string, args ...any) ([]Record, error) {
	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows, base)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// IndexStats summarises the index.
type IndexStats struct {
	Records     int64
	Categories  int64
	LastFetched time.Time
}

// Stats returns index statistics.
func (x *Index) Stats(ctx context.Context) (*IndexStats, error) {
	var stats IndexStats
	var last sql.NullString
	err := x.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT category), MAX(fetched_at) FROM records
	`).Scan(&stats.Records, &stats.Categories, &last)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	if last.Valid {
		stats.LastFetched, _ = time.Parse(time.RFC3339, last.String)
	}
	return &stats, nil
}

func scanRecord(row interface{ Scan(...any) error }, base string) (*Record, error) {
	var rec Record
	var authors, date string
	if err := row.Scan(&rec.ID, &rec.Title, &authors, &rec.Category, &rec.Abstract, &date); err != nil {
		return nil, err
	}
	if authors != "" {
		rec.Authors = strings.Split(authors, "\n")
	}
	rec.Date, _ = time.Parse("2006-01-02", date)
	rec.Link = AbstractURL(base, rec.ID)
	rec.PDFLink = PDFURL(base, rec.ID)
	return &rec, nil
}
