package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/harbourstone/dealscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id              TEXT PRIMARY KEY,
	data            TEXT NOT NULL,
	suburb          TEXT,
	district        TEXT,
	filter_status   TEXT NOT NULL DEFAULT 'pending',
	analysis_status TEXT NOT NULL DEFAULT 'pending',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analyses (
	listing_id TEXT PRIMARY KEY REFERENCES listings(id),
	data       TEXT NOT NULL,
	score      REAL,
	verdict    TEXT,
	rank       INTEGER,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_listings_filter_status ON listings(filter_status);
CREATE INDEX IF NOT EXISTS idx_listings_analysis_status ON listings(analysis_status);
CREATE INDEX IF NOT EXISTS idx_listings_suburb ON listings(suburb);
CREATE INDEX IF NOT EXISTS idx_analyses_score ON analyses(score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveListing(ctx context.Context, l *model.Listing) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.FilterStatus == "" {
		l.FilterStatus = model.FilterStatusPending
	}
	if l.AnalysisStatus == "" {
		l.AnalysisStatus = model.AnalysisStatusPending
	}

	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal listing")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO listings (id, data, suburb, district, filter_status, analysis_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			suburb = excluded.suburb,
			district = excluded.district,
			filter_status = excluded.filter_status,
			analysis_status = excluded.analysis_status,
			updated_at = excluded.updated_at`,
		l.ID, string(data), l.Suburb, l.District,
		string(l.FilterStatus), string(l.AnalysisStatus), l.CreatedAt, l.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save listing %s", l.ID)
}

func (s *SQLiteStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM listings WHERE id = ?`, id)

	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("listing not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get listing")
	}

	var l model.Listing
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal listing")
	}
	return &l, nil
}

func (s *SQLiteStore) ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT data FROM listings WHERE 1=1`
	var args []any

	if filter.FilterStatus != "" {
		query += ` AND filter_status = ?`
		args = append(args, string(filter.FilterStatus))
	}
	if filter.AnalysisStatus != "" {
		query += ` AND analysis_status = ?`
		args = append(args, string(filter.AnalysisStatus))
	}
	if filter.Suburb != "" {
		query += ` AND suburb = ?`
		args = append(args, filter.Suburb)
	}
	if filter.District != "" {
		query += ` AND district = ?`
		args = append(args, filter.District)
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		var l model.Listing
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: list listings iterate")
}

func (s *SQLiteStore) UpdateListingStatus(ctx context.Context, id string, filterStatus model.FilterStatus, analysisStatus model.AnalysisStatus, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET
			filter_status = ?,
			analysis_status = ?,
			data = json_set(data, '$.filter_status', ?, '$.analysis_status', ?, '$.rejection_reason', ?),
			updated_at = ?
		 WHERE id = ?`,
		string(filterStatus), string(analysisStatus),
		string(filterStatus), string(analysisStatus), reason,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update listing status %s", id)
	}
	return checkRowsAffected(res, "listing", id)
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	if !a.Consistent() {
		return eris.Errorf("analysis for %s violates structural invariants", a.ListingID)
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	data, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	var score sql.NullFloat64
	var verdict sql.NullString
	if a.Score != nil {
		score = sql.NullFloat64{Float64: a.Score.Score, Valid: true}
		verdict = sql.NullString{String: string(a.Score.Verdict), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (listing_id, data, score, verdict, rank, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(listing_id) DO UPDATE SET
			data = excluded.data,
			score = excluded.score,
			verdict = excluded.verdict,
			rank = excluded.rank,
			updated_at = excluded.updated_at`,
		a.ListingID, string(data), score, verdict, a.Rank, a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save analysis %s", a.ListingID)
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, listingID string) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM analyses WHERE listing_id = ?`, listingID)

	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get analysis")
	}

	var a model.Analysis
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
	}
	return &a, nil
}

func (s *SQLiteStore) ListRanked(ctx context.Context, limit int) ([]model.Analysis, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM analyses WHERE score IS NOT NULL ORDER BY score DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list ranked")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		var a model.Analysis
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list ranked iterate")
}

func (s *SQLiteStore) UpdateRanks(ctx context.Context, ranks map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin ranks tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for listingID, rank := range ranks {
		_, err := tx.ExecContext(ctx,
			`UPDATE analyses SET rank = ?, data = json_set(data, '$.rank', ?), updated_at = ? WHERE listing_id = ?`,
			rank, rank, now, listingID,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: update rank %s", listingID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit ranks")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
