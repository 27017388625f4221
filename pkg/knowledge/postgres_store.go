package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements VectorStore using Postgres + pgvector.
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and returns a pgvector-backed store.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (ps *PostgresStore) StoreSnippet(ctx context.Context, source, content string, embedding []float32) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	query := `
                INSERT INTO knowledge_snippets (source, content, embedding)
                VALUES ($1, $2, $3::vector);
        `
	_, err := ps.DB.Exec(ctx, query, source, content, vectorLiteral(embedding))
	return err
}

func (ps *PostgresStore) SearchSnippets(ctx context.Context, queryEmbedding []float32, limit int) ([]Snippet, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	rows, err := ps.DB.Query(ctx, `
        SELECT id, source, content, (embedding <-> $1::vector) AS score
        FROM knowledge_snippets
        ORDER BY embedding <-> $1::vector
        LIMIT $2;
        `, vectorLiteral(queryEmbedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var s Snippet
		if err := rows.Scan(&s.ID, &s.Source, &s.Content, &s.Score); err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}

// CreateSchema ensures the pgvector extension and snippet table exist.
func (ps *PostgresStore) CreateSchema(ctx context.Context, dimensions int) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, fmt.Sprintf(`
                CREATE EXTENSION IF NOT EXISTS vector;
                CREATE TABLE IF NOT EXISTS knowledge_snippets (
                        id BIGSERIAL PRIMARY KEY,
                        source TEXT NOT NULL,
                        content TEXT NOT NULL,
                        embedding vector(%d)
                );
        `, dimensions))
	if err != nil {
		return fmt.Errorf("failed to create knowledge schema: %w", err)
	}
	return nil
}

// Close releases the underlying Postgres connection pool.
func (ps *PostgresStore) Close() error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	ps.DB.Close()
	return nil
}

func vectorLiteral(embedding []float32) string {
	encoded, _ := json.Marshal(embedding)
	return fmt.Sprintf("[%s]", strings.Trim(string(encoded), "[]"))
}

var _ VectorStore = (*PostgresStore)(nil)
