package pos

import (
	"context"
	"fmt"
	"time"

	"grocery-pos/internal/domain/cart"
	"grocery-pos/internal/domain/checkout"
	domoutbox "grocery-pos/internal/domain/outbox"
	"grocery-pos/internal/domain/pricing"
	"grocery-pos/internal/domain/receipt"
	"grocery-pos/internal/domain/sale"
	"grocery-pos/internal/domain/stock"
	"grocery-pos/internal/observability"
	"grocery-pos/internal/observability/logctx"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	posService      = "pos-service"
	useCaseCheckout = "pos.checkout"
	spanPrefix      = "UC."
	publishTimeout  = 300 * time.Millisecond
)

// CheckoutUseCase drives a transaction from the populated cart to a settled
// sale: validate payment, confirm with the operator, journal the lines,
// decrement stock, archive the receipt, clear the cart. Once the operator has
// confirmed, the commit runs to completion; anomalies along the way are
// collected as warnings on the result instead of aborting.
type CheckoutUseCase struct {
	carts     *CartService
	journal   sale.Journal
	ledger    stock.Ledger
	settings  ShopSettings
	archive   ReceiptArchive
	publisher domoutbox.Publisher
	idGen     IDGenerator
	currency  string
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	warnCounter  observability.Counter   // checkout_warnings_total{kind}

	now func() time.Time
}

func NewCheckoutUseCase(
	carts *CartService,
	journal sale.Journal,
	ledger stock.Ledger,
	settings ShopSettings,
	archive ReceiptArchive,
	publisher domoutbox.Publisher,
	idGen IDGenerator,
	currency string,
	tel observability.Observability,
) *CheckoutUseCase {
	baseLog := observability.NopLogger()
	if tel != nil {
		baseLog = tel.Logger()
	}
	baseLog = baseLog.With(observability.F("service", posService))

	metricsProvider := observability.NopMetrics()
	if tel != nil {
		metricsProvider = tel.Metrics()
	}

	return &CheckoutUseCase{
		carts:        carts,
		journal:      journal,
		ledger:       ledger,
		settings:     settings,
		archive:      archive,
		publisher:    publisher,
		idGen:        idGen,
		currency:     currency,
		tel:          tel,
		log:          baseLog,
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
		warnCounter:  metricsProvider.Counter(observability.MCheckoutWarnings),
		now:          time.Now,
	}
}

type CheckoutInput struct {
	DiscountPercent string
	Received        decimal.Decimal
	Confirm         Confirmer
}

type CheckoutResult struct {
	SaleID      string
	Status      checkout.Status
	Totals      pricing.Totals
	ReceiptPath string
	Warnings    []checkout.Warning
	CommittedAt time.Time
}

// Execute performs the checkout flow.
func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutInput) (_ *CheckoutResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseCheckout))

	var saleID string
	var publishErr error

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"Checkout",
		attribute.String("use_case", useCaseCheckout),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		if uc.reqCounter != nil {
			uc.reqCounter.Add(1,
				observability.L("use_case", useCaseCheckout),
				observability.L("outcome", outcome),
			)
		}
		if uc.durHistogram != nil {
			uc.durHistogram.Observe(lat,
				observability.L("use_case", useCaseCheckout),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if saleID != "" {
			fields = append(fields, observability.F("sale_id", saleID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	txn := checkout.NewTransaction()
	if err := txn.BeginValidation(); err != nil {
		outcome, statusText = "error", "STATE_TRANSITION_FAILED"
		return nil, err
	}

	lines := uc.carts.Lines()
	if len(lines) == 0 {
		outcome, statusText = "error", "EMPTY_CART"
		_ = txn.FailValidation("empty cart")
		return nil, checkout.ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	totals := pricing.Compute(subtotal, pricing.ParsePercent(cmd.DiscountPercent), cmd.Received)
	if !totals.Sufficient() {
		outcome, statusText = "error", "INSUFFICIENT_PAYMENT"
		_ = txn.FailValidation("insufficient payment")
		return nil, checkout.ErrInsufficientPayment
	}

	if cmd.Confirm != nil {
		ok, confirmErr := cmd.Confirm.Confirm(ctx, Summary{Totals: totals, Lines: len(lines)})
		if confirmErr != nil {
			outcome, statusText = "error", "CONFIRMATION_FAILED"
			_ = txn.FailValidation("confirmation failed")
			return nil, fmt.Errorf("checkout: confirm: %w", confirmErr)
		}
		if !ok {
			outcome, statusText = "error", "NOT_CONFIRMED"
			_ = txn.FailValidation("operator declined")
			return nil, checkout.ErrNotConfirmed
		}
	}

	if err := txn.Confirm(); err != nil {
		outcome, statusText = "error", "STATE_TRANSITION_FAILED"
		return nil, err
	}

	// Point of no return. Everything below reports warnings, never errors.
	committedAt := uc.now()
	saleID = uc.idGen.NewID()
	span.SetAttributes(attribute.String("sale.id", saleID))

	var warnings []checkout.Warning
	warn := func(w checkout.Warning) {
		warnings = append(warnings, w)
		if uc.warnCounter != nil {
			uc.warnCounter.Add(1, observability.L("kind", string(w.Kind)))
		}
		logger.Warn("checkout_warning",
			observability.F("kind", string(w.Kind)),
			observability.F("barcode", w.Barcode),
			observability.F("message", w.Message),
		)
	}

	records := make([]sale.Record, 0, len(lines))
	for _, line := range lines {
		records = append(records, sale.Record{
			SaleID:    saleID,
			Timestamp: committedAt,
			Barcode:   line.Barcode,
			Name:      line.Name,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
			Weighted:  line.Weighted,
		})
	}
	if appendErr := uc.journal.Append(ctx, records); appendErr != nil {
		warn(checkout.Warning{
			Kind:    checkout.WarnJournalAppendFailed,
			Message: appendErr.Error(),
		})
	}

	uc.applyStock(ctx, lines, warn)
	_ = txn.Settle() // committing -> settled cannot fail

	doc := receipt.Document{
		ShopName:        uc.settings.ShopName(ctx),
		Currency:        uc.currency,
		IssuedAt:        committedAt,
		Subtotal:        totals.Subtotal,
		DiscountPercent: totals.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		Total:           totals.Total,
		Received:        totals.Received,
		Change:          totals.Change,
	}
	for _, line := range lines {
		doc.Lines = append(doc.Lines, receipt.Line{
			Quantity:  line.Quantity,
			Name:      line.Name,
			LineTotal: line.LineTotal,
			Weighted:  line.Weighted,
		})
	}
	receiptPath, saveErr := uc.archive.Save(doc)
	if saveErr != nil {
		warn(checkout.Warning{
			Kind:    checkout.WarnReceiptPersistFailed,
			Message: saveErr.Error(),
		})
	}

	uc.carts.Clear(ctx)

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		publishErr = uc.publisher.Publish(pubCtx, sale.NewCommittedEvent(saleID, committedAt, len(lines), totals.Total))
		cancel()
		if publishErr != nil {
			statusText = "EVENT_PUBLISH_FAILED"
		}
	}

	span.AddEvent("sale.committed",
		trace.WithAttributes(
			attribute.String("sale.id", saleID),
			attribute.Int("sale.lines", len(lines)),
			attribute.Int("sale.warnings", len(warnings)),
		),
	)

	return &CheckoutResult{
		SaleID:      saleID,
		Status:      txn.Status(),
		Totals:      totals,
		ReceiptPath: receiptPath,
		Warnings:    warnings,
		CommittedAt: committedAt,
	}, nil
}

// applyStock reloads the ledger and decrements each sold line. A line with no
// ledger entry is a bookkeeping mismatch and is skipped without creating an
// entry; a decrement below zero proceeds and is flagged.
func (uc *CheckoutUseCase) applyStock(ctx context.Context, lines []cart.Line, warn func(checkout.Warning)) {
	quantities, loadErr := uc.ledger.Load(ctx)
	if loadErr != nil {
		warn(checkout.Warning{
			Kind:    checkout.WarnStockPersistFailed,
			Message: fmt.Sprintf("reload stock: %v", loadErr),
		})
		return
	}

	for _, line := range lines {
		current, ok := quantities[line.Barcode]
		if !ok {
			warn(checkout.Warning{
				Kind:    checkout.WarnInventoryMismatch,
				Barcode: line.Barcode,
				Message: "sold item has no stock entry",
			})
			continue
		}
		remaining := current.Sub(line.Quantity)
		if remaining.IsNegative() {
			warn(checkout.Warning{
				Kind:    checkout.WarnNegativeStock,
				Barcode: line.Barcode,
				Message: "stock driven below zero",
			})
		}
		quantities[line.Barcode] = remaining
	}

	if saveErr := uc.ledger.Save(ctx, quantities); saveErr != nil {
		warn(checkout.Warning{
			Kind:    checkout.WarnStockPersistFailed,
			Message: saveErr.Error(),
		})
	}
}
