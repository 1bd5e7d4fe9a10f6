// Package catalog persists compiled documents in SQLite, keyed by their
// content-addressed identity. The CLI uses it so repeated compilations of
// the same source can be listed and fetched without recompiling.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kellegram/skematic/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is a handle on one catalog database.
type Catalog struct {
	db *sql.DB
}

// Entry is one stored compilation.
type Entry struct {
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	CreatedAt string `json:"created_at"`
}

// Open creates or opens a catalog at path. SQLite only supports one writer
// at a time, so the pool is pinned to a single connection.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Save stores a compiled document under name and returns its identity.
// Saving an identical document again is idempotent.
func (c *Catalog) Save(ctx context.Context, name string, doc *ir.Document) (string, error) {
	hash, err := ir.DocumentID(doc)
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	// Nil slices would round-trip as JSON null and fail the structural
	// checks on the way back out.
	stored := *doc
	if stored.Nodes == nil {
		stored.Nodes = []ir.Node{}
	}
	if stored.Edges == nil {
		stored.Edges = []ir.Edge{}
	}
	payload, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO documents (hash, name, payload, node_count, edge_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, name, string(payload), len(doc.Nodes), len(doc.Edges))
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	return hash, nil
}

// Get fetches a stored document by its identity hash.
func (c *Catalog) Get(ctx context.Context, hash string) (*ir.Document, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE hash = ?`, hash).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %q not found", hash)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc, err := ir.DecodeJSON([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("get document %q: %w", hash, err)
	}
	return doc, nil
}

// List returns stored entries, newest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT hash, name, node_count, edge_count, created_at
		FROM documents
		ORDER BY created_at DESC, hash
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Hash, &e.Name, &e.NodeCount, &e.EdgeCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
