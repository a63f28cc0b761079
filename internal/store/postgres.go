package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/harbourstone/dealscout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id              TEXT PRIMARY KEY,
	data            JSONB NOT NULL,
	suburb          TEXT,
	district        TEXT,
	filter_status   TEXT NOT NULL DEFAULT 'pending',
	analysis_status TEXT NOT NULL DEFAULT 'pending',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analyses (
	listing_id TEXT PRIMARY KEY REFERENCES listings(id),
	data       JSONB NOT NULL,
	score      DOUBLE PRECISION,
	verdict    TEXT,
	rank       INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_filter_status ON listings(filter_status);
CREATE INDEX IF NOT EXISTS idx_listings_analysis_status ON listings(analysis_status);
CREATE INDEX IF NOT EXISTS idx_listings_suburb ON listings(suburb);
CREATE INDEX IF NOT EXISTS idx_analyses_score ON analyses(score);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveListing(ctx context.Context, l *model.Listing) error {
	if l.ID == "" {
		return eris.New("postgres: listing id required")
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
		return eris.Wrap(err, "postgres: marshal listing")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO listings (id, data, suburb, district, filter_status, analysis_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			suburb = EXCLUDED.suburb,
			district = EXCLUDED.district,
			filter_status = EXCLUDED.filter_status,
			analysis_status = EXCLUDED.analysis_status,
			updated_at = EXCLUDED.updated_at`,
		l.ID, data, l.Suburb, l.District,
		string(l.FilterStatus), string(l.AnalysisStatus), l.CreatedAt, l.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save listing %s", l.ID)
}

func (s *PostgresStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM listings WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("listing not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get listing")
	}

	var l model.Listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal listing")
	}
	return &l, nil
}

func (s *PostgresStore) ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT data FROM listings WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.FilterStatus != "" {
		query += ` AND filter_status = ` + arg(string(filter.FilterStatus))
	}
	if filter.AnalysisStatus != "" {
		query += ` AND analysis_status = ` + arg(string(filter.AnalysisStatus))
	}
	if filter.Suburb != "" {
		query += ` AND suburb = ` + arg(filter.Suburb)
	}
	if filter.District != "" {
		query += ` AND district = ` + arg(filter.District)
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		var l model.Listing
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: list listings iterate")
}

func (s *PostgresStore) UpdateListingStatus(ctx context.Context, id string, filterStatus model.FilterStatus, analysisStatus model.AnalysisStatus, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET
			filter_status = $1,
			analysis_status = $2,
			data = data || jsonb_build_object('filter_status', $1::text, 'analysis_status', $2::text, 'rejection_reason', $3::text),
			updated_at = $4
		 WHERE id = $5`,
		string(filterStatus), string(analysisStatus), reason, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update listing status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("listing not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
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
		return eris.Wrap(err, "postgres: marshal analysis")
	}

	var score *float64
	var verdict *string
	if a.Score != nil {
		score = &a.Score.Score
		v := string(a.Score.Verdict)
		verdict = &v
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (listing_id, data, score, verdict, rank, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (listing_id) DO UPDATE SET
			data = EXCLUDED.data,
			score = EXCLUDED.score,
			verdict = EXCLUDED.verdict,
			rank = EXCLUDED.rank,
			updated_at = EXCLUDED.updated_at`,
		a.ListingID, data, score, verdict, a.Rank, a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save analysis %s", a.ListingID)
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, listingID string) (*model.Analysis, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM analyses WHERE listing_id = $1`, listingID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get analysis")
	}

	var a model.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal analysis")
	}
	return &a, nil
}

func (s *PostgresStore) ListRanked(ctx context.Context, limit int) ([]model.Analysis, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM analyses WHERE score IS NOT NULL ORDER BY score DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list ranked")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		var a model.Analysis
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list ranked iterate")
}

func (s *PostgresStore) UpdateRanks(ctx context.Context, ranks map[string]int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin ranks tx")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for listingID, rank := range ranks {
		_, err := tx.Exec(ctx,
			`UPDATE analyses SET rank = $1, data = data || jsonb_build_object('rank', $1::int), updated_at = $2 WHERE listing_id = $3`,
			rank, now, listingID,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: update rank %s", listingID)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit ranks")
}
