// Package faqcache provides a SQLite-backed semantic FAQ cache. Each
// entry pairs a previously answered question with its answer and the
// question's embedding; lookups find the nearest stored question by
// cosine similarity and return its answer when the match clears a
// length-adaptive threshold. The cache is an optimization layer: every
// error it produces is swallowed by the caller, never surfaced.
package faqcache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one cached question/answer pair.
type Entry struct {
	// Question is the exact question text as originally asked.
	Question string
	// Answer is the cached answer text.
	Answer string
	// Embedding is the question's embedding vector.
	Embedding []float32
	// CreatedAt is when the entry was persisted.
	CreatedAt time.Time
}

// Match is a lookup result: the nearest stored entry and its cosine
// similarity to the query vector.
type Match struct {
	Entry
	// Similarity is the cosine similarity between the query embedding
	// and the stored embedding (-1.0–1.0).
	Similarity float32
}

// Store persists and searches cached question/answer pairs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Nearest returns the stored entry most similar to the query
	// embedding, or nil when the cache is empty.
	Nearest(ctx context.Context, queryEmbedding []float32) (*Match, error)
	// Insert persists a new entry keyed by exact question text. It
	// reports false without error when the question is already cached.
	Insert(ctx context.Context, e Entry) (bool, error)
	// List returns all cached entries ordered newest-first, without
	// embeddings. Used by administrative tooling.
	List(ctx context.Context) ([]Entry, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the FAQ cache database,
// ~/.ragsearch/faq.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("faqcache: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".ragsearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("faqcache: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "faq.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("faqcache: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS faq (
    question    TEXT    PRIMARY KEY,
    answer      TEXT    NOT NULL,
    embedding   BLOB    NOT NULL,  -- little-endian float32 vector
    created_at  INTEGER NOT NULL   -- Unix timestamp (seconds)
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("faqcache: migrate: %w", err)
	}
	return nil
}

// Nearest scans all stored entries and returns the one with the highest
// cosine similarity to the query embedding. A linear scan is adequate:
// the cache holds answered FAQs, not a corpus, and stays in the
// hundreds of rows.
func (s *SQLiteStore) Nearest(ctx context.Context, queryEmbedding []float32) (*Match, error) {
	const q = `SELECT question, answer, embedding, created_at FROM faq`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("faqcache: nearest: %w", err)
	}
	defer rows.Close()

	var best *Match
	for rows.Next() {
		var (
			e    Entry
			blob []byte
			ts   int64
		)
		if err := rows.Scan(&e.Question, &e.Answer, &blob, &ts); err != nil {
			return nil, fmt.Errorf("faqcache: nearest scan: %w", err)
		}
		e.Embedding = decodeVector(blob)
		e.CreatedAt = time.Unix(ts, 0)

		sim := Cosine(queryEmbedding, e.Embedding)
		if best == nil || sim > best.Similarity {
			best = &Match{Entry: e, Similarity: sim}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("faqcache: nearest rows: %w", err)
	}
	return best, nil
}

// Insert persists a new entry. The question text is the primary key, so
// re-answering the same question never duplicates or overwrites; the
// first cached answer wins and Insert reports false.
func (s *SQLiteStore) Insert(ctx context.Context, e Entry) (bool, error) {
	const q = `INSERT OR IGNORE INTO faq (question, answer, embedding, created_at) VALUES (?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q, e.Question, e.Answer, encodeVector(e.Embedding), time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("faqcache: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("faqcache: insert rows affected: %w", err)
	}
	return n > 0, nil
}

// List returns all cached entries newest-first. Embeddings are not
// loaded; the CLI has no use for them.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	const q = `SELECT question, answer, created_at FROM faq ORDER BY created_at DESC, question ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("faqcache: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts int64
		)
		if err := rows.Scan(&e.Question, &e.Answer, &ts); err != nil {
			return nil, fmt.Errorf("faqcache: list scan: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("faqcache: list rows: %w", err)
	}
	return entries, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("faqcache: close: %w", err)
	}
	return nil
}

// encodeVector serializes a float32 vector as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVector deserializes a little-endian float32 vector.
func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths
// or zero vectors yield 0 so a malformed row can never produce a hit.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
