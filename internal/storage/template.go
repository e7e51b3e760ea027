package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"composer/internal/codec"
	"composer/internal/domain"
)

// TemplateStore implements domain.TemplateStore on a SQL database. The
// component tree is kept as a JSON column.
type TemplateStore struct {
	db *DB
}

func NewTemplateStore(db *DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// SaveTemplate upserts t. Delete-then-insert inside one transaction keeps
// the statement portable across SQLite, Postgres and MySQL.
func (s *TemplateStore) SaveTemplate(ctx context.Context, t *domain.Template) error {
	comps, err := codec.MarshalComponents(t.Components)
	if err != nil {
		return fmt.Errorf("encode components: %w", err)
	}
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.rebind(`DELETE FROM templates WHERE id = ?`), t.ID); err != nil {
		return fmt.Errorf("replace template %s: %w", t.ID, err)
	}
	_, err = tx.ExecContext(ctx, s.db.rebind(
		`INSERT INTO templates (id, name, description, components_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		t.ID, t.Name, t.Description, string(comps), t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert template %s: %w", t.ID, err)
	}
	return tx.Commit()
}

func (s *TemplateStore) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	row := s.db.Conn().QueryRowContext(ctx, s.db.rebind(
		`SELECT id, name, description, components_json, created_at, updated_at FROM templates WHERE id = ?`), id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get template %s: %w", id, domain.ErrTemplateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return t, nil
}

func (s *TemplateStore) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, name, description, components_json, created_at, updated_at FROM templates ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *TemplateStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.Conn().ExecContext(ctx, s.db.rebind(`DELETE FROM templates WHERE id = ?`), id)
	return err
}

func (s *TemplateStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(r rowScanner) (*domain.Template, error) {
	var t domain.Template
	var comps string
	if err := r.Scan(&t.ID, &t.Name, &t.Description, &comps, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	components, err := codec.UnmarshalComponents([]byte(comps))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", t.ID, err)
	}
	t.Components = components
	return &t, nil
}
