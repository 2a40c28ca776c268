package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore keeps documents as JSON rows in the documents table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a store over an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Get(ctx context.Context, userID, collection, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE user_id = ? AND collection = ? AND id = ?`,
		userID, collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *SQLiteStore) Set(ctx context.Context, userID, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (user_id, collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, collection, id, string(raw), now, now)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Add(ctx context.Context, userID, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, userID, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Update(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE user_id = ? AND collection = ? AND id = ?`,
		userID, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}

	data := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		data[k] = v
	}
	merged, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE user_id = ? AND collection = ? AND id = ?`,
		string(merged), s.now().UnixNano(), userID, collection, id); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, userID, collection, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = ? AND collection = ? AND id = ?`,
		userID, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, userID, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents
		 WHERE user_id = ? AND collection = ?
		 ORDER BY created_at, rowid`,
		userID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) DeleteCollection(ctx context.Context, userID, collection string) error {
	prefix := collection + "/"
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = ? AND (collection = ? OR substr(collection, 1, ?) = ?)`,
		userID, collection, len(prefix), prefix); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM documents ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var (
		doc                  Document
		raw                  string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&doc.ID, &raw, &createdAt, &updatedAt); err != nil {
		return Document{}, err
	}
	doc.Data = map[string]any{}
	if err := json.Unmarshal([]byte(raw), &doc.Data); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal document %s: %w", doc.ID, err)
	}
	doc.CreatedAt = time.Unix(0, createdAt)
	doc.UpdatedAt = time.Unix(0, updatedAt)
	return doc, nil
}
