package receiptstore

import (
	"path/filepath"
	"testing"
	"time"

	domain "grocery-pos/internal/domain/receipt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc(ts time.Time) domain.Document {
	return domain.Document{
		ShopName: "Corner Store",
		Currency: "Rs.",
		IssuedAt: ts,
		Lines: []domain.Line{
			{Quantity: decimal.NewFromInt(1), Name: "Milk", LineTotal: decimal.NewFromInt(60)},
		},
		Subtotal: decimal.NewFromInt(60),
		Total:    decimal.NewFromInt(60),
		Received: decimal.NewFromInt(60),
	}
}

func TestSaveCreatesDirAndNamesByTimestamp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	archive := NewArchive(dir)

	path, err := archive.Save(sampleDoc(time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt_20240501_143000.txt"), path)

	content, err := archive.Read("receipt_20240501_143000.txt")
	require.NoError(t, err)
	assert.Contains(t, content, "CORNER STORE")
	assert.Contains(t, content, "Milk")
}

func TestListNewestFirst(t *testing.T) {
	archive := NewArchive(t.TempDir())

	_, err := archive.Save(sampleDoc(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = archive.Save(sampleDoc(time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	names, err := archive.List()
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "receipt_20240502_090000.txt", names[0])
	assert.Equal(t, "receipt_20240501_090000.txt", names[1])
}

func TestListMissingDirIsEmpty(t *testing.T) {
	archive := NewArchive(filepath.Join(t.TempDir(), "never-created"))

	names, err := archive.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadRejectsTraversal(t *testing.T) {
	archive := NewArchive(t.TempDir())

	_, err := archive.Read("../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = archive.Read("")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = archive.Read("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
