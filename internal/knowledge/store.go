package knowledge

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/knowbot/knowledge-chatbot/pkg/postgres"
)

// Store reads and writes knowledge records in PostgreSQL. The chat pipeline
// only ever reads; writes happen through the importer.
type Store struct {
	db *postgres.Client
}

// NewStore creates a Store backed by the given PostgreSQL client.
func NewStore(db *postgres.Client) *Store {
	return &Store{db: db}
}

// Retrievable returns every record with a non-empty question and answer, in
// insertion order. Records failing that invariant are ingestion defects and
// are excluded from retrieval rather than defended against downstream.
func (s *Store) Retrievable(ctx context.Context) ([]Record, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, category, question, answer
		   FROM knowledge_items
		  WHERE question <> '' AND answer <> ''
		  ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge items: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Category, &r.Question, &r.Answer); err != nil {
			return nil, fmt.Errorf("scanning knowledge item: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge items: %w", err)
	}
	return records, nil
}

// Count returns the number of retrievable records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM knowledge_items WHERE question <> '' AND answer <> ''`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting knowledge items: %w", err)
	}
	return n, nil
}

// Insert stores one record and returns its assigned ID.
func (s *Store) Insert(ctx context.Context, r Record, sourceFile string) (int64, error) {
	var id int64
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO knowledge_items (category, question, answer, source_file)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			r.Category, r.Question, r.Answer, nullableString(sourceFile),
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("inserting knowledge item: %w", err)
	}
	return id, nil
}

// nullableString converts a Go string to a sql.NullString, treating the
// empty string as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
