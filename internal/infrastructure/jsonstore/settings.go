package jsonstore

import (
	"context"
	"sync"
)

const (
	shopNameKey     = "shop_name"
	defaultShopName = "Simple Grocery Shop"
)

// Settings wraps config.json. Unlike the other stores, a corrupt document is
// defaulted silently: misconfiguration must never block the register.
// Unknown keys are preserved across saves.
type Settings struct {
	mu   sync.Mutex
	path string
}

func NewSettings(path string) *Settings {
	return &Settings{path: path}
}

func (s *Settings) ShopName(ctx context.Context) string {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadDoc()
	if name, ok := doc[shopNameKey].(string); ok && name != "" {
		return name
	}
	return defaultShopName
}

func (s *Settings) SaveShopName(ctx context.Context, name string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadDoc()
	doc[shopNameKey] = name
	return save(s.path, doc)
}

func (s *Settings) loadDoc() map[string]any {
	doc := make(map[string]any)
	if err := load(s.path, &doc); err != nil {
		return make(map[string]any)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc
}
