// Package repository provides catalog source access.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"construbot_backend/internal/catalog/domain"
)

// Source fetches the full product list from wherever the catalog lives.
type Source interface {
	// Fetch returns all products. A missing or unreachable source is an
	// error; the cache decides how to degrade.
	Fetch(ctx context.Context) ([]domain.Product, error)
	// Name identifies the source for logging.
	Name() string
}

// fileRecord is the on-disk shape of one catalog entry.
type fileRecord struct {
	Producto    string  `json:"producto"`
	Precio      float64 `json:"precio"`
	Categoria   string  `json:"categoria"`
	Descripcion string  `json:"descripcion"`
	Medida      string  `json:"medida"`
	Marca       string  `json:"marca"`
}

// FileSource reads the catalog from a local JSON file, the array-of-records
// format the retailer's export produces.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path for logging.
func (s *FileSource) Name() string {
	return s.path
}

// Fetch reads and decodes the catalog file. Duplicate names keep the first
// occurrence so a snapshot holds at most one entry per distinct name.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", s.path, err)
	}

	var records []fileRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", s.path, err)
	}

	seen := make(map[string]struct{}, len(records))
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		if rec.Producto == "" {
			continue
		}
		if _, dup := seen[rec.Producto]; dup {
			continue
		}
		seen[rec.Producto] = struct{}{}
		products = append(products, domain.Product{
			Name:        rec.Producto,
			Price:       rec.Precio,
			Category:    rec.Categoria,
			Description: rec.Descripcion,
			Size:        rec.Medida,
			Brand:       rec.Marca,
		})
	}

	return products, nil
}
