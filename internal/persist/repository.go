package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/spatial"
	"github.com/dshills/vecstorm/internal/engine/store"
)

// ErrNotFound is returned when no drawing has the requested name.
var ErrNotFound = errors.New("persist: drawing not found")

// ErrInvalidName is returned for a blank drawing name.
var ErrInvalidName = errors.New("persist: invalid drawing name")

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
	name         TEXT PRIMARY KEY,
	revision     TEXT NOT NULL,
	version      INTEGER NOT NULL,
	entity_count INTEGER NOT NULL,
	entities     TEXT NOT NULL,
	tree         TEXT,
	updated_at   INTEGER NOT NULL
);`

// Info describes a saved drawing.
type Info struct {
	Name string
	// Revision identifies this save. It changes on every save.
	Revision string
	// Version counts the saves under this name, starting at 1.
	Version   int
	Count     int
	UpdatedAt time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock sets the time source for UpdatedAt.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) { r.now = now }
}

// Repository saves and loads named drawings.
// It is safe for concurrent use.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates the schema if needed and returns a repository.
func NewRepository(ctx context.Context, db *sql.DB, opts ...RepositoryOption) (*Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("persist: create schema: %w", err)
	}
	r := &Repository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// Save stores doc under name, replacing any earlier drawing of that name.
func (r *Repository) Save(ctx context.Context, name string, doc store.Document) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	entities, err := json.Marshal(doc.Entities)
	if err != nil {
		return fmt.Errorf("persist: encode entities: %w", err)
	}
	var tree sql.NullString
	if doc.Tree != nil {
		data, err := json.Marshal(doc.Tree)
		if err != nil {
			return fmt.Errorf("persist: encode index: %w", err)
		}
		tree = sql.NullString{String: string(data), Valid: true}
	}

	return runTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO drawings (name, revision, version, entity_count, entities, tree, updated_at)
			VALUES (?, ?, 1, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				revision     = excluded.revision,
				version      = drawings.version + 1,
				entity_count = excluded.entity_count,
				entities     = excluded.entities,
				tree         = excluded.tree,
				updated_at   = excluded.updated_at`,
			name, uuid.NewString(), len(doc.Entities), string(entities), tree, r.now().UnixMilli())
		if err != nil {
			return fmt.Errorf("persist: save %q: %w", name, err)
		}
		return nil
	})
}

// Load returns the drawing saved under name.
func (r *Repository) Load(ctx context.Context, name string) (store.Document, error) {
	name, err := cleanName(name)
	if err != nil {
		return store.Document{}, err
	}
	var (
		entities string
		tree     sql.NullString
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT entities, tree FROM drawings WHERE name = ?`, name).Scan(&entities, &tree)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("persist: load %q: %w", name, err)
	}

	var doc store.Document
	if err := json.Unmarshal([]byte(entities), &doc.Entities); err != nil {
		return store.Document{}, fmt.Errorf("persist: decode %q entities: %w", name, err)
	}
	if doc.Entities == nil {
		doc.Entities = []*entity.Entity{}
	}
	if tree.Valid {
		var root spatial.Node[store.Handle]
		if err := json.Unmarshal([]byte(tree.String), &root); err != nil {
			return store.Document{}, fmt.Errorf("persist: decode %q index: %w", name, err)
		}
		doc.Tree = &root
	}
	return doc, nil
}

// Stat describes the drawing saved under name.
func (r *Repository) Stat(ctx context.Context, name string) (Info, error) {
	name, err := cleanName(name)
	if err != nil {
		return Info{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT name, revision, version, entity_count, updated_at
		FROM drawings WHERE name = ?`, name)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return info, err
}

// List describes every saved drawing, by name.
func (r *Repository) List(ctx context.Context) ([]Info, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, revision, version, entity_count, updated_at
		FROM drawings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("persist: list: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: list: %w", err)
	}
	return out, nil
}

// Delete removes the drawing saved under name.
func (r *Repository) Delete(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return runTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM drawings WHERE name = ?`, name)
		if err != nil {
			return fmt.Errorf("persist: delete %q: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(s scanner) (Info, error) {
	var (
		info Info
		ms   int64
	)
	if err := s.Scan(&info.Name, &info.Revision, &info.Version, &info.Count, &ms); err != nil {
		return Info{}, err
	}
	info.UpdatedAt = time.UnixMilli(ms)
	return info, nil
}
