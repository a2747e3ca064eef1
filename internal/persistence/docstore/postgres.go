package docstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores documents in a single JSONB table. The schema lives in
// migrations/001_documents.sql.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an established pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `
        SELECT id, fields, created_at, updated_at
        FROM documents WHERE collection=$1
        ORDER BY created_at DESC, id DESC`
	rows, err := p.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if doc.Fields, err = decodeFields(raw); err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (*Document, error) {
	const query = `
        SELECT id, fields, created_at, updated_at
        FROM documents WHERE collection=$1 AND id=$2`
	var (
		doc Document
		raw []byte
	)
	err := p.pool.QueryRow(ctx, query, collection, id).Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Fields, err = decodeFields(raw); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (p *Postgres) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	raw, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	const query = `
        INSERT INTO documents (collection, id, fields)
        VALUES ($1,$2,$3::jsonb)
        RETURNING id`
	var id string
	if err := p.pool.QueryRow(ctx, query, collection, uuid.NewString(), string(raw)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) Patch(ctx context.Context, collection, id string, fields Fields) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	const query = `
        UPDATE documents SET fields = fields || $3::jsonb, updated_at = NOW()
        WHERE collection=$1 AND id=$2`
	cmd, err := p.pool.Exec(ctx, query, collection, id, string(raw))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	cmd, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if p.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.pool.Ping(ctx)
}

// Close is a no-op; the pool is owned by persistence.Postgres.
func (p *Postgres) Close() error { return nil }
