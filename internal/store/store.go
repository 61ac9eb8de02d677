// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists generated roadmaps and cached research results in
// a SQLite database under the configured data directory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

const dbFile = "roadmaps.db"

// defaultListLimit caps List when no limit is given.
const defaultListLimit = 50

// ErrNotFound is returned when no roadmap has the requested ID.
var ErrNotFound = errors.New("roadmap not found")

// Store manages the roadmap SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at cfg.DataDir/roadmaps.db and creates
// the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS roadmaps (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			request TEXT NOT NULL,
			tags TEXT NOT NULL,
			document TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_roadmaps_created_at ON roadmaps(created_at)`,
		`CREATE TABLE IF NOT EXISTS research_cache (
			tag TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			links TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Summary is a stored roadmap without its document body.
type Summary struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Request      string    `json:"request" yaml:"request"`
	Tags         []string  `json:"tags" yaml:"tags"`
	Technologies int       `json:"technologies" yaml:"technologies"`
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
}

// Record is a stored roadmap.
type Record struct {
	Summary `yaml:",inline"`
	Roadmap *types.RoadmapDocument `json:"roadmap" yaml:"roadmap"`
}

// ListOptions filters List.
type ListOptions struct {
	// Tag keeps roadmaps whose extracted tags include Tag.
	Tag string

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// SaveRoadmap stores doc under a new ID and returns the ID.
func (s *Store) SaveRoadmap(ctx context.Context, doc *types.RoadmapDocument) (string, error) {
	if doc == nil {
		return "", errors.New("saving roadmap: nil document")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling roadmap: %w", err)
	}
	tags := doc.ExtractedTags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO roadmaps (id, title, request, tags, document, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, doc.Title, doc.UserRequest, string(tagsJSON), string(body),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting roadmap: %w", err)
	}
	return id, nil
}

// Get returns the roadmap stored under id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, request, tags, created_at, document FROM roadmaps WHERE id = ?`, id)

	var (
		rec  Record
		body string
	)
	if err := scanSummary(row, &rec.Summary, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Record{}, fmt.Errorf("looking up roadmap: %w", err)
	}
	rec.Roadmap = &types.RoadmapDocument{}
	if err := json.Unmarshal([]byte(body), rec.Roadmap); err != nil {
		return Record{}, fmt.Errorf("decoding roadmap %s: %w", id, err)
	}
	rec.Technologies = len(rec.Roadmap.Technologies)
	return rec, nil
}

// List returns stored roadmaps, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	records, err := s.list(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(records))
	for i, r := range records {
		out[i] = r.Summary
	}
	return out, nil
}

func (s *Store) list(ctx context.Context, opts ListOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, title, request, tags, created_at, document FROM roadmaps r WHERE 1=1`)
	if opts.Tag != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.tags) WHERE value = ?)`)
		args = append(args, opts.Tag)
	}
	qb.WriteString(` ORDER BY created_at DESC, id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying roadmaps: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec  Record
			body string
		)
		if err := scanSummary(rows, &rec.Summary, &body); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var doc types.RoadmapDocument
		if err := json.Unmarshal([]byte(body), &doc); err == nil {
			rec.Roadmap = &doc
			rec.Technologies = len(doc.Technologies)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the roadmap stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roadmaps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting roadmap: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, sum *Summary, body *string) error {
	var tagsJSON, created string
	if err := row.Scan(&sum.ID, &sum.Title, &sum.Request, &tagsJSON, &created, body); err != nil {
		return err
	}
	json.Unmarshal([]byte(tagsJSON), &sum.Tags)
	sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return nil
}
