package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"composer/internal/domain"
	"composer/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// TemplateStore contract, run against every embedded backend
// ─────────────────────────────────────────────────────────────

func sampleTemplate(id string, created time.Time) *domain.Template {
	return &domain.Template{
		ID:          id,
		Name:        "Login " + id,
		Description: "form",
		CreatedAt:   created,
		UpdatedAt:   created,
		Components: []domain.SerializedComponent{
			{
				ID:           "comp_1",
				DefinitionID: "container",
				Position:     domain.Position{X: 10, Y: 20},
				Size:         domain.Size{Width: 300, Height: 200},
				Props: map[string]any{
					"title":  "Sign in",
					"rows":   3,
					"layout": map[string]any{"gap": int64(8), "align": []any{"start", uint8(1)}},
				},
				Styles: map[string]any{"background": "#fff", "zIndex": int32(2)},
				Children: []domain.SerializedComponent{
					{
						ID:           "comp_2",
						DefinitionID: "button",
						Position:     domain.Position{X: 20, Y: 150},
						Size:         domain.Size{Width: 100, Height: 40},
						Props:        map[string]any{"label": "Go"},
						Styles:       map[string]any{},
						Children:     []domain.SerializedComponent{},
					},
				},
			},
		},
	}
}

// storedTemplate is sampleTemplate as every store returns it: numbers read
// back as float64 whatever integer type was saved.
func storedTemplate(id string, created time.Time) *domain.Template {
	t := sampleTemplate(id, created)
	c := &t.Components[0]
	c.Props["rows"] = 3.0
	c.Props["layout"] = map[string]any{"gap": 8.0, "align": []any{"start", 1.0}}
	c.Styles["zIndex"] = 2.0
	return t
}

func runStoreContract(t *testing.T, store domain.TemplateStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get missing", func(t *testing.T) {
		_, err := store.GetTemplate(ctx, "nope")
		if !errors.Is(err, domain.ErrTemplateNotFound) {
			t.Fatalf("expected ErrTemplateNotFound, got %v", err)
		}
	})

	t.Run("save and get", func(t *testing.T) {
		if err := store.SaveTemplate(ctx, sampleTemplate("t1", base)); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := store.GetTemplate(ctx, "t1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		want := storedTemplate("t1", base)
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("upsert replaces", func(t *testing.T) {
		updated := sampleTemplate("t1", base)
		updated.Name = "Renamed"
		updated.Components = updated.Components[:0]
		updated.UpdatedAt = base.Add(time.Hour)
		if err := store.SaveTemplate(ctx, updated); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := store.GetTemplate(ctx, "t1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "Renamed" || len(got.Components) != 0 {
			t.Errorf("expected replaced template, got %+v", got)
		}
		if !got.UpdatedAt.Equal(base.Add(time.Hour)) {
			t.Errorf("UpdatedAt = %v", got.UpdatedAt)
		}
	})

	t.Run("list ordered by creation", func(t *testing.T) {
		if err := store.SaveTemplate(ctx, sampleTemplate("t0", base.Add(-time.Hour))); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveTemplate(ctx, sampleTemplate("t2", base.Add(time.Hour))); err != nil {
			t.Fatal(err)
		}
		list, err := store.ListTemplates(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var ids []string
		for _, tpl := range list {
			ids = append(ids, tpl.ID)
		}
		if diff := cmp.Diff([]string{"t0", "t1", "t2"}, ids); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.DeleteTemplate(ctx, "t0"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.GetTemplate(ctx, "t0"); !errors.Is(err, domain.ErrTemplateNotFound) {
			t.Errorf("expected deleted template to be gone, got %v", err)
		}
		if err := store.DeleteTemplate(ctx, "t0"); err != nil {
			t.Errorf("deleting twice should be a no-op, got %v", err)
		}
	})
}

func TestMemoryTemplateStore(t *testing.T) {
	store := storage.NewMemoryTemplateStore()
	defer store.Close()
	runStoreContract(t, store)
}

func TestMemoryTemplateStore_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryTemplateStore()
	tpl := sampleTemplate("t1", time.Now())
	if err := store.SaveTemplate(ctx, tpl); err != nil {
		t.Fatal(err)
	}
	tpl.Components[0].Props["title"] = "mutated"

	got, _ := store.GetTemplate(ctx, "t1")
	if got.Components[0].Props["title"] != "Sign in" {
		t.Errorf("store shares props with caller: %v", got.Components[0].Props)
	}
	tpl.Components[0].Props["layout"].(map[string]any)["gap"] = 99
	got.Components[0].Children[0].Props["label"] = "mutated"
	got.Components[0].Props["layout"].(map[string]any)["align"].([]any)[0] = "end"

	again, _ := store.GetTemplate(ctx, "t1")
	if again.Components[0].Children[0].Props["label"] != "Go" {
		t.Errorf("store shares nested props with reader")
	}
	want := map[string]any{"gap": 8.0, "align": []any{"start", 1.0}}
	if diff := cmp.Diff(want, again.Components[0].Props["layout"]); diff != "" {
		t.Errorf("store shares nested prop values (-want +got):\n%s", diff)
	}
}

func TestSQLiteTemplateStore(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "nested", "composer.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := storage.NewTemplateStore(db)
	defer store.Close()
	runStoreContract(t, store)
}

func TestSQLiteTemplateStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "composer.db")
	db, err := storage.New(path)
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewTemplateStore(db)
	if err := store.SaveTemplate(ctx, sampleTemplate("keep", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	store.Close()

	db, err = storage.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	store = storage.NewTemplateStore(db)
	defer store.Close()
	if _, err := store.GetTemplate(ctx, "keep"); err != nil {
		t.Errorf("expected template after reopen: %v", err)
	}
}

func TestBoltTemplateStore(t *testing.T) {
	store, err := storage.NewBoltTemplateStore(filepath.Join(t.TempDir(), "templates.bolt"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

// ─────────────────────────────────────────────────────────────
// OpenTemplateStore
// ─────────────────────────────────────────────────────────────

func TestConnection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conn    storage.Connection
		wantErr bool
	}{
		{"memory", storage.Connection{Driver: storage.DriverMemory}, false},
		{"sqlite with path", storage.Connection{Driver: storage.DriverSQLite, Path: "/tmp/x.db"}, false},
		{"sqlite without path", storage.Connection{Driver: storage.DriverSQLite}, true},
		{"bolt without path", storage.Connection{Driver: storage.DriverBolt}, true},
		{"postgres host", storage.Connection{Driver: storage.DriverPostgres, Host: "db"}, false},
		{"mysql nothing", storage.Connection{Driver: storage.DriverMySQL}, true},
		{"mongodb uri", storage.Connection{Driver: storage.DriverMongoDB, URI: "mongodb://localhost"}, false},
		{"unknown", storage.Connection{Driver: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenTemplateStore_Embedded(t *testing.T) {
	dir := t.TempDir()
	for _, conn := range []storage.Connection{
		{Driver: storage.DriverMemory},
		{Driver: storage.DriverSQLite, Path: filepath.Join(dir, "a.db")},
		{Driver: storage.DriverBolt, Path: filepath.Join(dir, "a.bolt")},
	} {
		store, err := storage.OpenTemplateStore(conn)
		if err != nil {
			t.Fatalf("%s: %v", conn.Driver, err)
		}
		if err := store.SaveTemplate(context.Background(), sampleTemplate("x", time.Now().UTC())); err != nil {
			t.Errorf("%s: save: %v", conn.Driver, err)
		}
		store.Close()
	}
}
