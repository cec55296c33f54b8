package quotes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/knowbot/knowledge-chatbot/pkg/postgres"
)

// Store persists quotes in PostgreSQL.
type Store struct {
	db *postgres.Client
}

// NewStore creates a Store backed by the given PostgreSQL client.
func NewStore(db *postgres.Client) *Store {
	return &Store{db: db}
}

// Latest returns up to limit quotes, newest first.
func (s *Store) Latest(ctx context.Context, limit int) ([]Quote, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, author, message, created_at
		   FROM quotes
		  ORDER BY created_at DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	var result []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.ID, &q.Author, &q.Message, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}
	return result, nil
}

// ReplaceAll wipes the quotes table and inserts the new batch in one
// transaction, so readers never observe a half-replaced set.
func (s *Store) ReplaceAll(ctx context.Context, batch []Quote) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM quotes`); err != nil {
			return fmt.Errorf("clearing quotes: %w", err)
		}
		for _, q := range batch {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quotes (author, message) VALUES ($1, $2)`,
				q.Author, q.Message); err != nil {
				return fmt.Errorf("inserting quote: %w", err)
			}
		}
		return nil
	})
}
