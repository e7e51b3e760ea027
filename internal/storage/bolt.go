package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"composer/internal/codec"
	"composer/internal/domain"
)

const bucketTemplates = "templates"

// BoltTemplateStore keeps msgpack-encoded templates in a bbolt file, one
// key per template id.
type BoltTemplateStore struct {
	db *bolt.DB
}

// NewBoltTemplateStore opens (or creates) the bbolt file at path.
func NewBoltTemplateStore(path string) (*BoltTemplateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketTemplates))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize templates bucket: %w", err)
	}
	return &BoltTemplateStore{db: db}, nil
}

func (s *BoltTemplateStore) SaveTemplate(_ context.Context, t *domain.Template) error {
	data, err := codec.Encode(t, codec.FormatMsgpack)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTemplates)).Put([]byte(t.ID), data)
	})
}

func (s *BoltTemplateStore) GetTemplate(_ context.Context, id string) (*domain.Template, error) {
	var t *domain.Template
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketTemplates)).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("get template %s: %w", id, domain.ErrTemplateNotFound)
		}
		var err error
		t, err = codec.Decode(v, codec.FormatMsgpack)
		return err
	})
	return t, err
}

func (s *BoltTemplateStore) ListTemplates(_ context.Context) ([]domain.Template, error) {
	var out []domain.Template
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTemplates)).ForEach(func(k, v []byte) error {
			t, err := codec.Decode(v, codec.FormatMsgpack)
			if err != nil {
				return fmt.Errorf("template %s: %w", k, err)
			}
			out = append(out, *t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortTemplates(out)
	return out, nil
}

func (s *BoltTemplateStore) DeleteTemplate(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTemplates)).Delete([]byte(id))
	})
}

func (s *BoltTemplateStore) Close() error {
	return s.db.Close()
}
