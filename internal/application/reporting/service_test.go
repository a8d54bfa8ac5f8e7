package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"grocery-pos/internal/domain/sale"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakeJournal struct {
	records []sale.Record
	err     error
}

func (f *fakeJournal) Append(_ context.Context, records []sale.Record) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeJournal) Load(context.Context) ([]sale.Record, error) {
	return f.records, f.err
}

type fakeArchive struct {
	names   []string
	content map[string]string
}

func (f *fakeArchive) List() ([]string, error) { return f.names, nil }

func (f *fakeArchive) Read(name string) (string, error) {
	if content, ok := f.content[name]; ok {
		return content, nil
	}
	return "", errors.New("not found")
}

func journalFixture() *fakeJournal {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &fakeJournal{records: []sale.Record{
		{Timestamp: ts, Name: "Rice", Quantity: d("3"), LineTotal: d("150")},
		{Timestamp: ts, Name: "Apples", Quantity: d("2.5"), LineTotal: d("200"), Weighted: true},
		{Timestamp: ts.Add(time.Hour), Name: "Rice", Quantity: d("2"), LineTotal: d("100")},
		{Timestamp: ts.Add(time.Hour), Name: "Sugar", Quantity: d("5"), LineTotal: d("225")},
	}}
}

func TestTopProductsAggregatesByName(t *testing.T) {
	svc := NewService(journalFixture(), &fakeArchive{})

	top, err := svc.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, "Rice", top[0].Name)
	assert.True(t, top[0].Quantity.Equal(d("5")))
	assert.True(t, top[0].Revenue.Equal(d("250")))

	assert.Equal(t, "Sugar", top[1].Name)
	assert.Equal(t, "Apples", top[2].Name)
}

func TestTopProductsHonorsLimit(t *testing.T) {
	svc := NewService(journalFixture(), &fakeArchive{})

	top, err := svc.TopProducts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Rice", top[0].Name)
}

func TestTopProductsBreaksTiesByName(t *testing.T) {
	journal := &fakeJournal{records: []sale.Record{
		{Name: "Banana", Quantity: d("2"), LineTotal: d("20")},
		{Name: "Apple", Quantity: d("2"), LineTotal: d("30")},
	}}
	svc := NewService(journal, &fakeArchive{})

	top, err := svc.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Apple", top[0].Name)
	assert.Equal(t, "Banana", top[1].Name)
}

func TestTopProductsEmptyJournal(t *testing.T) {
	svc := NewService(&fakeJournal{}, &fakeArchive{})

	top, err := svc.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTopProductsSurfacesJournalError(t *testing.T) {
	svc := NewService(&fakeJournal{err: errors.New("disk gone")}, &fakeArchive{})

	_, err := svc.TopProducts(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load journal")
}

func TestReceiptsDelegatesToArchive(t *testing.T) {
	archive := &fakeArchive{
		names:   []string{"receipt_20240502_090000.txt", "receipt_20240501_090000.txt"},
		content: map[string]string{"receipt_20240501_090000.txt": "TOTAL: Rs.50.00"},
	}
	svc := NewService(&fakeJournal{}, archive)

	names, err := svc.Receipts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, archive.names, names)

	content, err := svc.Receipt(context.Background(), "receipt_20240501_090000.txt")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL: Rs.50.00", content)
}
