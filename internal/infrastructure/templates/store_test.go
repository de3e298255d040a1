package templates

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/companyos/portal-api/internal/core/domain"
)

func TestStore_Find_Embedded(t *testing.T) {
	store := NewStore("")
	ctx := context.Background()

	tpl, err := store.Find(ctx, "buss1", "welcome")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if tpl.Subject != "Welcome to the Team!" {
		t.Errorf("subject = %q", tpl.Subject)
	}
	if tpl.Content == "" {
		t.Error("content is empty")
	}
}

func TestStore_Find_DefaultBusiness(t *testing.T) {
	store := NewStore("")

	got, err := store.Find(context.Background(), "", "welcome")
	if err != nil {
		t.Fatalf("Find with empty business: %v", err)
	}
	want, err := store.Find(context.Background(), domain.DefaultBusiness, "welcome")
	if err != nil {
		t.Fatalf("Find default business: %v", err)
	}
	if got.Subject != want.Subject || got.Content != want.Content {
		t.Errorf("empty business resolved %+v, want %+v", got, want)
	}
}

func TestStore_Find_NotFound(t *testing.T) {
	store := NewStore("")
	ctx := context.Background()

	cases := []struct {
		label    string
		business string
		name     string
	}{
		{"unknown template", "buss1", "farewell"},
		{"unknown business", "buss9", "welcome"},
		{"path-like business", "../data/buss1", "welcome"},
	}
	for _, tc := range cases {
		if _, err := store.Find(ctx, tc.business, tc.name); !errors.Is(err, domain.ErrTemplateNotFound) {
			t.Errorf("%s: err = %v, want ErrTemplateNotFound", tc.label, err)
		}
	}
}

func TestStore_Find_DirOverride(t *testing.T) {
	dir := t.TempDir()
	set := `{"welcome": {"subject": "Hola", "content": "Bienvenido."}}`
	if err := os.WriteFile(filepath.Join(dir, "buss1.json"), []byte(set), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(dir)
	ctx := context.Background()

	tpl, err := store.Find(ctx, "buss1", "welcome")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if tpl.Subject != "Hola" {
		t.Errorf("subject = %q, want %q", tpl.Subject, "Hola")
	}

	// A business with no file in the directory is not served from the
	// embedded defaults.
	if _, err := store.Find(ctx, "buss2", "welcome"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("missing file err = %v, want ErrTemplateNotFound", err)
	}
}
