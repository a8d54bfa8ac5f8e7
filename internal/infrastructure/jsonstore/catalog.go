package jsonstore

import (
	"context"
	"sync"

	domain "grocery-pos/internal/domain/catalog"
	"grocery-pos/internal/observability"

	"github.com/shopspring/decimal"
)

// productDoc mirrors the on-disk products.json entry shape.
type productDoc struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CatalogRepository struct {
	mu   sync.Mutex
	path string
	log  observability.Logger
}

func NewCatalogRepository(path string, logger observability.Logger) *CatalogRepository {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CatalogRepository{path: path, log: logger.With(observability.F("component", "catalog_store"))}
}

func (r *CatalogRepository) Load(ctx context.Context) (map[string]domain.Product, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make(map[string]productDoc)
	if err := load(r.path, &docs); err != nil {
		r.log.Warn("catalog_load_failed", observability.F("error", err.Error()))
		return map[string]domain.Product{}, nil
	}

	products := make(map[string]domain.Product, len(docs))
	for barcode, doc := range docs {
		products[barcode] = domain.Product{
			Barcode: barcode,
			Name:    doc.Name,
			Price:   decimal.NewFromFloat(doc.Price),
		}
	}
	return products, nil
}

func (r *CatalogRepository) Save(ctx context.Context, products map[string]domain.Product) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make(map[string]productDoc, len(products))
	for barcode, p := range products {
		docs[barcode] = productDoc{Name: p.Name, Price: p.Price.InexactFloat64()}
	}
	return save(r.path, docs)
}
