// Package receiptstore archives rendered receipts as plain-text files with
// timestamp-derived names inside a dedicated directory.
package receiptstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	domain "grocery-pos/internal/domain/receipt"
)

var ErrNotFound = errors.New("receiptstore: receipt not found")

type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save renders the document and writes it under the archive directory,
// creating the directory on first use. It returns the artifact path.
func (a *Archive) Save(doc domain.Document) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("receiptstore: prepare %s: %w", a.dir, err)
	}
	path := filepath.Join(a.dir, domain.FileName(doc.IssuedAt))
	if err := os.WriteFile(path, []byte(doc.Render()), 0o644); err != nil {
		return "", fmt.Errorf("receiptstore: write %s: %w", path, err)
	}
	return path, nil
}

// List returns archived receipt names, newest first. The timestamp-derived
// naming makes lexicographic descending order chronological.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("receiptstore: list %s: %w", a.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Read returns the content of a single archived receipt by name.
func (a *Archive) Read(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".txt") {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(a.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("receiptstore: read %s: %w", name, err)
	}
	return string(data), nil
}
