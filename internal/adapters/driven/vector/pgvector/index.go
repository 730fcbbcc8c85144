// Package pgvector provides a vector index stored in PostgreSQL with the
// pgvector extension, so several server processes can share embeddings.
//
// Each index generation owns the rows tagged with its generation ID.
// Closing a generation deletes its rows.
package pgvector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // registers the postgres driver
	pgv "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.VectorIndex        = (*Index)(nil)
	_ driven.VectorIndexFactory = (*Factory)(nil)
)

// DefaultTable holds chunk embeddings for all generations.
const DefaultTable = "pdfiq_chunks"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Factory creates index generations backed by one PostgreSQL table.
type Factory struct {
	db    *sql.DB
	table string
}

// Option configures a Factory.
type Option func(*Factory)

// WithTable overrides the table name.
func WithTable(name string) Option {
	return func(f *Factory) {
		f.table = name
	}
}

// Open connects to PostgreSQL and creates the extension and table if needed.
func Open(ctx context.Context, url string, opts ...Option) (*Factory, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: postgres url is empty", domain.ErrVectorIndexUnavailable)
	}

	f := &Factory{table: DefaultTable}
	for _, opt := range opts {
		opt(f)
	}
	if !tableName.MatchString(f.table) {
		return nil, fmt.Errorf("%w: invalid table name %q", domain.ErrInvalidInput, f.table)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorIndexUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorIndexUnavailable, err)
	}

	f.db = db
	if err := f.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return f, nil
}

func (f *Factory) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			generation TEXT NOT NULL,
			chunk_id   TEXT NOT NULL,
			embedding  vector NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (generation, chunk_id)
		)`, f.table),
	}
	for _, stmt := range stmts {
		if _, err := f.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate pgvector schema: %w", err)
		}
	}
	return nil
}

// NewIndex returns an empty generation for vectors of the given size.
func (f *Factory) NewIndex(_ context.Context, dimensions int) (driven.VectorIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}
	return &Index{
		db:         f.db,
		table:      f.table,
		generation: uuid.NewString(),
		dimensions: dimensions,
		ids:        make(map[string]struct{}),
	}, nil
}

// Close closes the database connection.
func (f *Factory) Close() error {
	return f.db.Close()
}

// Index is one generation of rows in the shared table.
type Index struct {
	db         *sql.DB
	table      string
	generation string
	dimensions int

	mu     sync.RWMutex
	ids    map[string]struct{}
	closed bool
}

var errClosed = errors.New("vector index is closed")

// Generation returns the ID tagging this index's rows.
func (i *Index) Generation() string {
	return i.generation
}

// Add upserts the vector for chunkID.
func (i *Index) Add(ctx context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != i.dimensions {
		return fmt.Errorf("vector for %s has %d dimensions, index expects %d", chunkID, len(embedding), i.dimensions)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return errClosed
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (generation, chunk_id, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (generation, chunk_id) DO UPDATE SET embedding = EXCLUDED.embedding
	`, i.table)
	if _, err := i.db.ExecContext(ctx, query, i.generation, chunkID, pgv.NewVector(embedding)); err != nil {
		return fmt.Errorf("insert vector %s: %w", chunkID, err)
	}

	i.ids[chunkID] = struct{}{}
	return nil
}

// Delete removes a vector from this generation.
func (i *Index) Delete(ctx context.Context, chunkID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return errClosed
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE generation = $1 AND chunk_id = $2`, i.table)
	if _, err := i.db.ExecContext(ctx, query, i.generation, chunkID); err != nil {
		return fmt.Errorf("delete vector %s: %w", chunkID, err)
	}

	delete(i.ids, chunkID)
	return nil
}

// Search orders this generation's rows by cosine distance to query.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != i.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d", len(query), i.dimensions)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return nil, errClosed
	}

	stmt := fmt.Sprintf(`
		SELECT chunk_id, 1 - (embedding <=> $2) AS similarity
		FROM %s
		WHERE generation = $1
		ORDER BY embedding <=> $2, chunk_id
		LIMIT $3
	`, i.table)

	rows, err := i.db.QueryContext(ctx, stmt, i.generation, pgv.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var hit driven.VectorHit
		var similarity sql.NullFloat64
		if err := rows.Scan(&hit.ChunkID, &similarity); err != nil {
			return nil, fmt.Errorf("scan vector hit: %w", err)
		}
		// A zero query vector yields NULL similarity.
		hit.Similarity = similarity.Float64
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}

	return hits, nil
}

// Len returns the number of vectors added by this process.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

// Close deletes the generation's rows.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	i.ids = nil

	query := fmt.Sprintf(`DELETE FROM %s WHERE generation = $1`, i.table)
	if _, err := i.db.Exec(query, i.generation); err != nil {
		return fmt.Errorf("drop generation %s: %w", i.generation, err)
	}
	return nil
}
