// Package store keeps a history of solved puzzles in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/step"
)

const schema = `
CREATE TABLE IF NOT EXISTS solves (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	numbers    TEXT    NOT NULL,
	target     INTEGER NOT NULL,
	result     INTEGER NOT NULL,
	exact      INTEGER NOT NULL,
	steps      TEXT    NOT NULL,
	nodes      INTEGER NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	created_ns INTEGER NOT NULL
);`

// Record is one solve of one puzzle.
type Record struct {
	ID        int64
	Puzzle    puzzles.Puzzle
	Result    int64
	Exact     bool
	Steps     []step.Step
	Nodes     uint64
	Elapsed   time.Duration
	CreatedAt time.Time
}

// NewRecord builds a record out of a solver result.
func NewRecord(p puzzles.Puzzle, best *step.Stack, nodes uint64, elapsed time.Duration) (Record, error) {
	result, err := best.Result()
	if err != nil {
		return Record{}, err
	}
	return Record{
		Puzzle:    p,
		Result:    result,
		Exact:     result == p.Target,
		Steps:     best.Steps(),
		Nodes:     nodes,
		Elapsed:   elapsed,
		CreatedAt: time.Now(),
	}, nil
}

type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path. ":memory:"
// gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and keeps an in-memory
	// database alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened-history-store")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores r and returns its new ID.
func (s *Store) Save(ctx context.Context, r Record) (int64, error) {
	numbers, err := json.Marshal(r.Puzzle.Numbers)
	if err != nil {
		return 0, err
	}
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO solves (numbers, target, result, exact, steps, nodes, elapsed_ns, created_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(numbers), r.Puzzle.Target, r.Result, r.Exact, string(steps),
		int64(r.Nodes), int64(r.Elapsed), r.CreatedAt.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, numbers, target, result, exact, steps, nodes, elapsed_ns, created_ns
		 FROM solves ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r                          Record
			numbers, steps             string
			nodes, elapsedNs, createNs int64
		)
		err := rows.Scan(&r.ID, &numbers, &r.Puzzle.Target, &r.Result, &r.Exact,
			&steps, &nodes, &elapsedNs, &createNs)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(numbers), &r.Puzzle.Numbers); err != nil {
			return nil, fmt.Errorf("record %d: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(steps), &r.Steps); err != nil {
			return nil, fmt.Errorf("record %d: %w", r.ID, err)
		}
		r.Nodes = uint64(nodes)
		r.Elapsed = time.Duration(elapsedNs)
		r.CreatedAt = time.Unix(0, createNs)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns how many records are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solves`).Scan(&n)
	return n, err
}
