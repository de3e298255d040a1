// Package templates implements ports.EmailTemplateRepository over per-business
// JSON files. A data directory can be mounted for operator-managed sets;
// otherwise the embedded defaults serve.
package templates

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/companyos/portal-api/internal/core/domain"
)

//go:embed data/*.json
var defaultSets embed.FS

// Store resolves email templates from <business>.json files, each holding a
// map of template name to subject+content.
type Store struct {
	dir string
}

// NewStore returns a Store reading from dir when non-empty, the embedded
// defaults otherwise.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Find(_ context.Context, business, name string) (*domain.EmailTemplate, error) {
	if business == "" {
		business = domain.DefaultBusiness
	}
	// Business names key file lookups; refuse anything path-like.
	if strings.ContainsAny(business, "/\\.") {
		return nil, domain.ErrTemplateNotFound
	}

	raw, err := s.readSet(business)
	if err != nil {
		return nil, err
	}

	var set map[string]domain.EmailTemplate
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse template set %s: %w", business, err)
	}

	tpl, ok := set[name]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return &tpl, nil
}

func (s *Store) readSet(business string) ([]byte, error) {
	if s.dir != "" {
		raw, err := os.ReadFile(filepath.Join(s.dir, business+".json"))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, domain.ErrTemplateNotFound
			}
			return nil, fmt.Errorf("read template set %s: %w", business, err)
		}
		return raw, nil
	}

	raw, err := defaultSets.ReadFile("data/" + business + ".json")
	if err != nil {
		return nil, domain.ErrTemplateNotFound
	}
	return raw, nil
}
