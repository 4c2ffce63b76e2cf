package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/Drewraw/social-record-platform/internal/db"
	"github.com/Drewraw/social-record-platform/internal/model"
)

// PostgresStore implements Store using a pgx pool. Besides the record
// document it keeps one row per field so provenance can be queried.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgres connects to connString and returns a PostgresStore.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return NewPostgresFromPool(pool), nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	source_url TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	party      TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profile_fields (
	profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	source_url TEXT NOT NULL,
	tier       TEXT NOT NULL,
	position   INT NOT NULL,
	PRIMARY KEY (profile_id, key)
);

CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);
CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles(updated_at);
CREATE INDEX IF NOT EXISTS idx_profile_fields_tier ON profile_fields(tier);
`

var fieldUpsert = db.UpsertConfig{
	Table:        "profile_fields",
	Columns:      []string{"profile_id", "key", "value", "source_url", "tier", "position"},
	ConflictKeys: []string{"profile_id", "key"},
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, rec *model.ProfileRecord) (*StoredProfile, error) {
	if rec == nil || rec.SourceURL == "" {
		return nil, eris.New("postgres: profile has no source url")
	}
	now := s.now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	id := uuid.New().String()
	createdAt := now
	var existingID string
	var existingCreated time.Time
	err = tx.QueryRow(ctx,
		`SELECT id, created_at FROM profiles WHERE source_url = $1`, rec.SourceURL,
	).Scan(&existingID, &existingCreated)
	switch {
	case err == nil:
		id, createdAt = existingID, existingCreated
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrap(err, "postgres: lookup existing profile")
	}

	rec.ID = id
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal profile")
	}

	sp := newStoredProfile(id, rec, createdAt, now)
	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, source_url, name, party, state, record, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_url) DO UPDATE SET
		   name = EXCLUDED.name, party = EXCLUDED.party, state = EXCLUDED.state,
		   record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`,
		sp.ID, sp.SourceURL, sp.Name, sp.Party, sp.State, recordJSON, sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert profile %s", rec.SourceURL)
	}

	// Fields dropped since the last build must not linger.
	if _, err := tx.Exec(ctx, `DELETE FROM profile_fields WHERE profile_id = $1`, id); err != nil {
		return nil, eris.Wrapf(err, "postgres: clear fields %s", id)
	}
	if rows := fieldRows(id, rec); len(rows) > 0 {
		if _, err := db.UpsertTx(ctx, tx, fieldUpsert, rows); err != nil {
			return nil, eris.Wrapf(err, "postgres: save fields %s", id)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}
	return sp, nil
}

func fieldRows(id string, rec *model.ProfileRecord) [][]any {
	fields := rec.Fields.Fields()
	rows := make([][]any, 0, len(fields))
	for i, f := range fields {
		rows = append(rows, []any{id, f.Key, f.Value, f.SourceURL, f.Tier.String(), i})
	}
	return rows
}

const postgresSelect = `SELECT id, source_url, name, party, state, record, created_at, updated_at FROM profiles`

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*StoredProfile, error) {
	row := s.pool.QueryRow(ctx, postgresSelect+` WHERE id = $1`, id)
	return scanPgProfile(row, id)
}

func (s *PostgresStore) GetProfileByURL(ctx context.Context, sourceURL string) (*StoredProfile, error) {
	row := s.pool.QueryRow(ctx, postgresSelect+` WHERE source_url = $1`, sourceURL)
	return scanPgProfile(row, sourceURL)
}

func (s *PostgresStore) ListProfiles(ctx context.Context, filter ProfileFilter) ([]StoredProfile, error) {
	query := postgresSelect + ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR party ILIKE '%' || $2 || '%')
		AND ($3 = '' OR state ILIKE '%' || $3 || '%')
		ORDER BY updated_at DESC, id LIMIT $4 OFFSET $5`

	offset := max(filter.Offset, 0)
	rows, err := s.pool.Query(ctx, query, filter.Name, filter.Party, filter.State, listLimit(filter), offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var out []StoredProfile
	for rows.Next() {
		p, err := scanPgProfile(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete profile %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "delete %s", id)
	}
	return nil
}

func scanPgProfile(row scannable, key string) (*StoredProfile, error) {
	var p StoredProfile
	var recordJSON []byte
	err := row.Scan(&p.ID, &p.SourceURL, &p.Name, &p.Party, &p.State, &recordJSON, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "get %s", key)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan profile")
	}
	p.Record = &model.ProfileRecord{}
	if err := json.Unmarshal(recordJSON, p.Record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	return &p, nil
}
