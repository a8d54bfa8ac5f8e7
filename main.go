package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "grocery-pos/internal/application/catalog"
	"grocery-pos/internal/application/pos"
	"grocery-pos/internal/application/reporting"
	"grocery-pos/internal/application/stockwatch"
	"grocery-pos/internal/config"
	"grocery-pos/internal/infrastructure/id"
	"grocery-pos/internal/infrastructure/jsonstore"
	"grocery-pos/internal/infrastructure/observability/oteltrace"
	"grocery-pos/internal/infrastructure/observability/prometrics"
	"grocery-pos/internal/infrastructure/observability/telemetry"
	"grocery-pos/internal/infrastructure/observability/zaplogger"
	"grocery-pos/internal/infrastructure/outbox"
	"grocery-pos/internal/infrastructure/receiptstore"
	"grocery-pos/internal/observability"
	httppresentation "grocery-pos/internal/presentation/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	baseLogger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)

	registry := prometrics.New("", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MCheckoutWarnings: registry.Counter(
			string(observability.MCheckoutWarnings),
			"Commit-phase checkout anomalies by kind.",
			"kind",
		),
		observability.MLowStockAlerts: registry.Counter(
			string(observability.MLowStockAlerts),
			"Low stock alerts raised after committed sales.",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			prometheus.DefBuckets,
			"method", "route", "status",
		),
	}

	tel := telemetry.New(
		oteltrace.New(cfg.ServiceName),
		baseLogger,
		counters,
		histograms,
	)
	log := tel.Logger()

	products := jsonstore.NewCatalogRepository(cfg.ProductsPath(), log)
	ledger := jsonstore.NewStockLedger(cfg.StockPath(), log)
	journal := jsonstore.NewSalesJournal(cfg.JournalPath(), log)
	settings := jsonstore.NewSettings(cfg.SettingsPath())
	archive := receiptstore.NewArchive(cfg.ReceiptDir)
	idGenerator := id.NewUUIDGenerator()

	bus := outbox.NewBus(log)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	carts := pos.NewCartService(products, ledger, log)
	checkoutUC := pos.NewCheckoutUseCase(
		carts, journal, ledger, settings, archive, bus, idGenerator, cfg.Currency, tel,
	)
	catalogSvc := appcatalog.NewService(products, ledger, cfg.LowStockThreshold, log)
	reports := reporting.NewService(journal, archive)

	watcher := stockwatch.New(bus, products, ledger, cfg.LowStockThreshold, tel)
	watcher.Start()

	handler := httppresentation.NewHandler(
		carts, checkoutUC, catalogSvc, reports, settings, receiptstore.ErrNotFound, tel,
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		log.Info("http_server_stopped")
	}
}
