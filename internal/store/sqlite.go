package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	source_url TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	party      TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	record     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);
CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, rec *model.ProfileRecord) (*StoredProfile, error) {
	if rec == nil || rec.SourceURL == "" {
		return nil, eris.New("sqlite: profile has no source url")
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	id := uuid.New().String()
	createdAt := now
	var existingID string
	var existingCreated time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM profiles WHERE source_url = ?`, rec.SourceURL,
	).Scan(&existingID, &existingCreated)
	switch {
	case err == nil:
		id, createdAt = existingID, existingCreated
	case !errors.Is(err, sql.ErrNoRows):
		return nil, eris.Wrap(err, "sqlite: lookup existing profile")
	}

	rec.ID = id
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal profile")
	}

	sp := newStoredProfile(id, rec, createdAt, now)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, source_url, name, party, state, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_url) DO UPDATE SET
		   name = excluded.name, party = excluded.party, state = excluded.state,
		   record = excluded.record, updated_at = excluded.updated_at`,
		sp.ID, sp.SourceURL, sp.Name, sp.Party, sp.State, string(recordJSON), sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert profile %s", rec.SourceURL)
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return sp, nil
}

const sqliteSelect = `SELECT id, source_url, name, party, state, record, created_at, updated_at FROM profiles`

func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*StoredProfile, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id)
	return scanProfile(row, id)
}

func (s *SQLiteStore) GetProfileByURL(ctx context.Context, sourceURL string) (*StoredProfile, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE source_url = ?`, sourceURL)
	return scanProfile(row, sourceURL)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, filter ProfileFilter) ([]StoredProfile, error) {
	query := sqliteSelect + ` WHERE 1=1`
	var args []any

	if filter.Name != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.Party != "" {
		query += ` AND party LIKE ?`
		args = append(args, "%"+filter.Party+"%")
	}
	if filter.State != "" {
		query += ` AND state LIKE ?`
		args = append(args, "%"+filter.State+"%")
	}
	query += ` ORDER BY updated_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close() //nolint:errcheck

	var out []StoredProfile
	for rows.Next() {
		p, err := scanProfile(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete profile %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "delete %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProfile(row scannable, key string) (*StoredProfile, error) {
	var p StoredProfile
	var recordJSON string
	err := row.Scan(&p.ID, &p.SourceURL, &p.Name, &p.Party, &p.State, &recordJSON, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "get %s", key)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan profile")
	}
	p.Record = &model.ProfileRecord{}
	if err := json.Unmarshal([]byte(recordJSON), p.Record); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	return &p, nil
}

func newStoredProfile(id string, rec *model.ProfileRecord, createdAt, updatedAt time.Time) *StoredProfile {
	return &StoredProfile{
		ID:        id,
		SourceURL: rec.SourceURL,
		Name:      rec.Name(),
		Party:     rec.Fields.Value("Party"),
		State:     rec.Fields.Value("State"),
		Record:    rec,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
