// Package stockwatch watches committed sales and alerts on products whose
// on-hand quantity has fallen under the restock threshold.
package stockwatch

import (
	"context"
	"fmt"
	"time"

	"grocery-pos/internal/domain/catalog"
	domoutbox "grocery-pos/internal/domain/outbox"
	"grocery-pos/internal/domain/sale"
	"grocery-pos/internal/domain/stock"
	"grocery-pos/internal/observability"
	"grocery-pos/internal/observability/logctx"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService = "stockwatch_worker"
	spanPrefix    = "UC."
)

type Worker struct {
	subscriber domoutbox.Subscriber
	products   catalog.Repository
	ledger     stock.Ledger
	threshold  decimal.Decimal
	tel        observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	alertCounter observability.Counter   // low_stock_alerts_total
}

func New(
	subscriber domoutbox.Subscriber,
	products catalog.Repository,
	ledger stock.Ledger,
	threshold decimal.Decimal,
	tel observability.Observability,
) *Worker {
	baseLogger := observability.NopLogger()
	if tel != nil {
		baseLogger = tel.Logger()
	}
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		metricsProvider = tel.Metrics()
	}
	return &Worker{
		subscriber:   subscriber,
		products:     products,
		ledger:       ledger,
		threshold:    threshold,
		tel:          tel,
		log:          baseLogger.With(observability.F("service", workerService)),
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
		alertCounter: metricsProvider.Counter(observability.MLowStockAlerts),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(sale.CommittedEvent{}.EventName(), w.handleSaleCommitted)
}

func (w *Worker) handleSaleCommitted(ctx context.Context, e domoutbox.Event) error {
	const useCase = "stockwatch.sale_committed"
	evt, ok := e.(sale.CommittedEvent)
	if !ok {
		w.count(useCase, "ignored")
		return nil
	}

	ctx, span := w.tel.Tracer().Start(ctx, spanPrefix+"StockWatch",
		attribute.String("use_case", useCase),
		attribute.String("event", e.EventName()),
		attribute.String("sale.id", evt.SaleID),
	)
	start := time.Now()
	outcome, status := "success", "OK"

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCase),
		observability.F("sale_id", evt.SaleID),
	)
	ctx = logctx.With(ctx, logger)

	lowCount := 0
	defer func() {
		lat := time.Since(start).Seconds()
		w.count(useCase, outcome)
		if w.durHistogram != nil {
			w.durHistogram.Observe(lat, observability.L("use_case", useCase))
		}

		logger.Info("use_case_done",
			observability.F("outcome", outcome),
			observability.F("status", status),
			observability.F("latency_seconds", lat),
			observability.F("low_stock_products", lowCount),
		)

		if outcome == "error" {
			span.SetStatus(codes.Error, status)
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
	}()

	products, err := w.products.Load(ctx)
	if err != nil {
		outcome, status = "error", "CATALOG_LOAD_FAILED"
		return fmt.Errorf("stockwatch: load catalog: %w", err)
	}
	quantities, err := w.ledger.Load(ctx)
	if err != nil {
		outcome, status = "error", "STOCK_LOAD_FAILED"
		return fmt.Errorf("stockwatch: load stock: %w", err)
	}

	for barcode, p := range products {
		q := stock.Available(quantities, barcode)
		if q.GreaterThanOrEqual(w.threshold) {
			continue
		}
		lowCount++
		if w.alertCounter != nil {
			w.alertCounter.Add(1)
		}
		logger.Warn("low_stock_alert",
			observability.F("barcode", barcode),
			observability.F("name", p.Name),
			observability.F("quantity", q.String()),
			observability.F("threshold", w.threshold.String()),
		)
	}
	span.SetAttributes(attribute.Int("stock.low_products", lowCount))

	return nil
}

func (w *Worker) count(useCase, outcome string) {
	if w.reqCounter != nil {
		w.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
}
