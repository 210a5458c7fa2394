// Package store wraps the rqlite vector index that holds previously
// published copy and its embeddings.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rqlite/gorqlite"
)

// WriteError is returned when an upsert fails.
type WriteError struct {
	Err error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("store: write failed: %v", e.Err)
}

func (e WriteError) Unwrap() error {
	return e.Err
}

// QueryError is returned when a nearest-neighbour query fails. An empty
// result set is not an error.
type QueryError struct {
	Err error
}

func (e QueryError) Error() string {
	return fmt.Sprintf("store: query failed: %v", e.Err)
}

func (e QueryError) Unwrap() error {
	return e.Err
}

func New(conn *gorqlite.Connection) *Store {
	return &Store{
		conn: conn,
	}
}

type Store struct {
	conn *gorqlite.Connection
}

// Entry is a previously published copy, keyed by a unique ID. Entries are
// never mutated once written.
type Entry struct {
	ID        string
	Vector    []float32
	Noticia   string
	Copy      string
	CreatedAt time.Time
}

// Match is a nearest-neighbour result. Score is a similarity in (0, 1],
// where identical vectors score close to 1.
type Match struct {
	ID      string
	Score   float64
	Noticia string
	Copy    string
}

// Upsert writes an entry and its embedding. The write is idempotent by ID.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	embeddingJSON, err := json.Marshal(e.Vector)
	if err != nil {
		return WriteError{Err: fmt.Errorf("failed to marshal embedding: %w", err)}
	}
	statements := []gorqlite.ParameterizedStatement{
		{
			Query: `insert into copy_example (id, noticia, copy, created_at)
values (?, ?, ?, ?)
on conflict(id) do update
set
    noticia = excluded.noticia,
    copy = excluded.copy
`,
			Arguments: []any{e.ID, e.Noticia, e.Copy, e.CreatedAt},
		},
		{
			Query:     `insert or replace into copy_example_vec (id, embedding) values (?, ?)`,
			Arguments: []any{e.ID, string(embeddingJSON)},
		},
	}
	if _, err = s.conn.WriteParameterizedContext(ctx, statements); err != nil {
		return WriteError{Err: err}
	}
	return nil
}

// Query returns the topK nearest entries by similarity, descending. An empty
// store yields an empty slice, not an error.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) (matches []Match, err error) {
	inputEmbeddingJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, QueryError{Err: fmt.Errorf("failed to marshal input embedding: %w", err)}
	}
	stmt := gorqlite.ParameterizedStatement{
		Query: `with nearest as (
  select id, distance
  from copy_example_vec
  where embedding match ?
  order by distance asc
  limit ?
)
select
  n.id,
  n.distance,
  c.noticia,
  c.copy
from nearest n
inner join copy_example c on c.id = n.id;`,
		Arguments: []any{string(inputEmbeddingJSON), topK},
	}
	result, err := s.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, QueryError{Err: err}
	}
	for result.Next() {
		var m Match
		var distance float64
		if err = result.Scan(&m.ID, &distance, &m.Noticia, &m.Copy); err != nil {
			return nil, QueryError{Err: err}
		}
		m.Score = 1 / (1 + distance)
		matches = append(matches, m)
	}
	return matches, nil
}

// Get retrieves a single entry by ID.
func (s *Store) Get(ctx context.Context, id string) (e Entry, ok bool, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `select c.id, c.noticia, c.copy, c.created_at, vec_to_json(v.embedding)
from copy_example c
inner join copy_example_vec v on v.id = c.id
where c.id = ?`,
		Arguments: []any{id},
	}
	result, err := s.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return Entry{}, false, QueryError{Err: err}
	}
	if !result.Next() {
		return Entry{}, false, nil
	}
	var embeddingJSON string
	if err = result.Scan(&e.ID, &e.Noticia, &e.Copy, &e.CreatedAt, &embeddingJSON); err != nil {
		return Entry{}, false, QueryError{Err: err}
	}
	if err = json.Unmarshal([]byte(embeddingJSON), &e.Vector); err != nil {
		return Entry{}, false, QueryError{Err: fmt.Errorf("failed to unmarshal embedding: %w", err)}
	}
	return e, true, nil
}

// Delete removes an entry. The HTTP surface has no deletion path, this
// exists so tests can clean up after themselves.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	statements := []gorqlite.ParameterizedStatement{
		{
			Query:     `delete from copy_example_vec where id = ?`,
			Arguments: []any{id},
		},
		{
			Query:     `delete from copy_example where id = ?`,
			Arguments: []any{id},
		},
	}
	if _, err = s.conn.WriteParameterizedContext(ctx, statements); err != nil {
		return WriteError{Err: err}
	}
	return nil
}
