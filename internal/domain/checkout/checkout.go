package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("checkout: cart is empty")
	ErrInsufficientPayment = errors.New("checkout: amount received is less than the total due")
	ErrNotConfirmed        = errors.New("checkout: operator declined confirmation")

	ErrInvalidStateTransition = errors.New("checkout: invalid state transition")
)

type WarningKind string

// Commit-phase anomalies. Each is reported to the operator but never
// unwinds effects the commit has already applied.
const (
	WarnJournalAppendFailed  WarningKind = "journal_append_failed"
	WarnInventoryMismatch    WarningKind = "inventory_mismatch"
	WarnNegativeStock        WarningKind = "negative_stock"
	WarnStockPersistFailed   WarningKind = "stock_persist_failed"
	WarnReceiptPersistFailed WarningKind = "receipt_persist_failed"
)

type Warning struct {
	Kind    WarningKind
	Barcode string
	Message string
}
