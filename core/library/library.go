// Package library stores chart sources and their render history in a
// local SQLite catalog.
package library

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chartworks/nashville/core/cache"
	"github.com/chartworks/nashville/core/chart"
	"github.com/chartworks/nashville/core/errors"
	"github.com/chartworks/nashville/core/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS charts (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    fingerprint TEXT NOT NULL,
    source      TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS renders (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    chart_id    TEXT NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
    key_name    TEXT NOT NULL,
    rendered_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_renders_chart ON renders(chart_id);
`

// Chart is one stored chart source.
type Chart struct {
	ID          string
	Name        string
	Fingerprint string
	Source      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Lines splits the stored source back into chart lines.
func (c *Chart) Lines() []string {
	return strings.Split(c.Source, "\n")
}

// Render is one recorded render of a stored chart.
type Render struct {
	ID         int64
	ChartID    string
	KeyName    string
	RenderedAt time.Time
}

// Store is a chart catalog backed by SQLite. Reads go through a small
// LRU so repeated lookups during a render run skip the database.
type Store struct {
	db     *sql.DB
	byName cache.Cache[string, *Chart]
}

// Open opens (creating if needed) the catalog at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open library %s", path)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		db:     db,
		byName: cache.NewLRU[string, *Chart](cache.DefaultConfig()),
	}, nil
}

// migrate applies the schema statements one at a time.
func migrate(db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "migrate library schema")
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.byName.Clear()
	return s.db.Close()
}

// Save inserts the chart under name, or updates the stored source if
// the name already exists. The chart's fingerprint is recomputed from
// the source lines.
func (s *Store) Save(name string, lines []string) (*Chart, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "chart name must be non-empty")
	}

	now := time.Now().UTC()
	c := &Chart{
		ID:          uuid.NewString(),
		Name:        name,
		Fingerprint: chart.FingerprintLines(lines),
		Source:      strings.Join(lines, "\n"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.QueryRow(`INSERT INTO charts (id, name, fingerprint, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		  fingerprint = excluded.fingerprint,
		  source      = excluded.source,
		  updated_at  = excluded.updated_at
		RETURNING id, created_at`, c.ID, c.Name, c.Fingerprint, c.Source, now, now).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "save chart %s", name)
	}

	s.byName.Put(name, c)
	return c, nil
}

// Get retrieves a chart by name.
func (s *Store) Get(name string) (*Chart, error) {
	if c, ok := s.byName.Get(name); ok {
		return c, nil
	}

	c := &Chart{}
	err := s.db.QueryRow(`SELECT id, name, fingerprint, source, created_at, updated_at
		FROM charts WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Fingerprint, &c.Source, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("chart", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get chart %s", name)
	}

	s.byName.Put(name, c)
	return c, nil
}

// List returns all stored charts ordered by name.
func (s *Store) List() ([]*Chart, error) {
	rows, err := s.db.Query(`SELECT id, name, fingerprint, source, created_at, updated_at
		FROM charts ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list charts")
	}
	defer rows.Close()

	var out []*Chart
	for rows.Next() {
		c := &Chart{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Fingerprint, &c.Source, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a chart and its render history.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM charts WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "delete chart %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFound("chart", name)
	}

	s.byName.Remove(name)
	return nil
}

// RecordRender logs one render of a stored chart into a target key.
func (s *Store) RecordRender(chartID, keyName string) error {
	_, err := s.db.Exec(`INSERT INTO renders (chart_id, key_name, rendered_at) VALUES (?, ?, ?)`,
		chartID, keyName, time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "record render of %s", chartID)
	}
	return nil
}

// Renders returns the render history for a chart, newest first.
func (s *Store) Renders(chartID string) ([]*Render, error) {
	rows, err := s.db.Query(`SELECT id, chart_id, key_name, rendered_at
		FROM renders WHERE chart_id = ? ORDER BY rendered_at DESC, id DESC`, chartID)
	if err != nil {
		return nil, errors.Wrapf(err, "list renders of %s", chartID)
	}
	defer rows.Close()

	var out []*Render
	for rows.Next() {
		r := &Render{}
		if err := rows.Scan(&r.ID, &r.ChartID, &r.KeyName, &r.RenderedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
