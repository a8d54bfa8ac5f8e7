package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	appcatalog "grocery-pos/internal/application/catalog"
	"grocery-pos/internal/application/pos"
	"grocery-pos/internal/application/reporting"
	domcart "grocery-pos/internal/domain/cart"
	domcatalog "grocery-pos/internal/domain/catalog"
	domcheckout "grocery-pos/internal/domain/checkout"
	domstock "grocery-pos/internal/domain/stock"
	"grocery-pos/internal/observability"
	"grocery-pos/internal/observability/logctx"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Settings exposes the shop identity used on receipts.
type Settings interface {
	ShopName(ctx context.Context) string
	SaveShopName(ctx context.Context, name string) error
}

type Handler struct {
	carts    *pos.CartService
	checkout *pos.CheckoutUseCase
	catalog  *appcatalog.Service
	reports  *reporting.Service
	settings Settings
	notFound error // the archive's not-found sentinel
	log      observability.Logger
	tel      observability.Observability
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

func NewHandler(
	carts *pos.CartService,
	checkoutUC *pos.CheckoutUseCase,
	catalogSvc *appcatalog.Service,
	reports *reporting.Service,
	settings Settings,
	receiptNotFound error,
	tel observability.Observability,
) *Handler {
	baseLogger := observability.NopLogger()
	if tel != nil {
		baseLogger = tel.Logger()
	}
	return &Handler{
		carts:    carts,
		checkout: checkoutUC,
		catalog:  catalogSvc,
		reports:  reports,
		settings: settings,
		notFound: receiptNotFound,
		log:      baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:      tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Wire each route with middlewares:
	// Trace → ObservabilityMiddleware (request logger + metrics) → Access log → Handler
	h.muxHandle(mux, http.MethodPost, "/cart/unit", h.handleAddUnit)
	h.muxHandle(mux, http.MethodPost, "/cart/weighted", h.handleAddWeighted)
	h.muxHandle(mux, http.MethodPost, "/cart/remove", h.handleRemoveLine)
	h.muxHandle(mux, http.MethodPost, "/cart/clear", h.handleClearCart)
	h.muxHandle(mux, http.MethodGet, "/cart", h.handleViewCart)
	h.muxHandle(mux, http.MethodPost, "/cart/totals", h.handleTotals)
	h.muxHandle(mux, http.MethodPost, "/checkout", h.handleCheckout)
	h.muxHandle(mux, http.MethodGet, "/catalog", h.handleListCatalog)
	h.muxHandle(mux, http.MethodPost, "/catalog/upsert", h.handleUpsertProduct)
	h.muxHandle(mux, http.MethodPost, "/catalog/delete", h.handleDeleteProduct)
	h.muxHandle(mux, http.MethodGet, "/stock/low", h.handleLowStock)
	h.muxHandle(mux, http.MethodGet, "/reports/top-products", h.handleTopProducts)
	h.muxHandle(mux, http.MethodGet, "/receipts", h.handleListReceipts)
	h.muxHandle(mux, http.MethodGet, "/receipts/view", h.handleViewReceipt)
	h.muxHandle(mux, http.MethodGet, "/settings/shop-name", h.handleGetShopName)
	h.muxHandle(mux, http.MethodPost, "/settings/shop-name", h.handleSetShopName)
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	mux.HandleFunc(method+" "+route, func(w http.ResponseWriter, r *http.Request) {
		// Store stable route template for low-cardinality labels
		ctx := contextWithRoute(r.Context(), route)
		r = r.WithContext(ctx)

		wrapped := h.withTrace(
			ObservabilityMiddleware(
				logctx.FromOr(ctx, h.log),
				func(r *http.Request) string {
					return r.Header.Get(headerRequestID)
				},
				h.tel,
			)(
				h.withAccessLog(http.HandlerFunc(handler)),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

type cartLineDTO struct {
	Barcode   string `json:"barcode"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  string `json:"quantity"`
	LineTotal string `json:"line_total"`
	Weighted  bool   `json:"is_weighted"`
}

func toCartLineDTO(line domcart.Line) cartLineDTO {
	qty := line.Quantity.StringFixed(0)
	if line.Weighted {
		qty = line.Quantity.StringFixed(2)
	}
	return cartLineDTO{
		Barcode:   line.Barcode,
		Name:      line.Name,
		UnitPrice: line.UnitPrice.StringFixed(2),
		Quantity:  qty,
		LineTotal: line.LineTotal.StringFixed(2),
		Weighted:  line.Weighted,
	}
}

type cartResponse struct {
	Lines    []cartLineDTO `json:"lines"`
	Subtotal string        `json:"subtotal"`
}

type addUnitRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int64  `json:"quantity"`
}

func (h *Handler) handleAddUnit(w http.ResponseWriter, r *http.Request) {
	var req addUnitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.carts.AddUnit(r.Context(), req.Barcode, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w)
}

type addWeightedRequest struct {
	Barcode  string `json:"barcode"`
	WeightKg string `json:"weight_kg"`
}

func (h *Handler) handleAddWeighted(w http.ResponseWriter, r *http.Request) {
	var req addWeightedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	weight, err := decimal.NewFromString(strings.TrimSpace(req.WeightKg))
	if err != nil {
		writeError(w, http.StatusBadRequest, domcart.ErrInvalidWeight)
		return
	}
	if err := h.carts.AddWeighted(r.Context(), req.Barcode, weight); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w)
}

type removeLineRequest struct {
	Barcode string `json:"barcode"`
}

func (h *Handler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	var req removeLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.carts.Remove(r.Context(), req.Barcode); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	h.carts.Clear(r.Context())
	h.writeCart(w)
}

func (h *Handler) handleViewCart(w http.ResponseWriter, _ *http.Request) {
	h.writeCart(w)
}

func (h *Handler) writeCart(w http.ResponseWriter) {
	lines := h.carts.Lines()
	dto := make([]cartLineDTO, 0, len(lines))
	for _, line := range lines {
		dto = append(dto, toCartLineDTO(line))
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Lines:    dto,
		Subtotal: h.carts.Subtotal().StringFixed(2),
	})
}

type totalsRequest struct {
	DiscountPercent string `json:"discount_percent"`
	Received        string `json:"received"`
}

type totalsResponse struct {
	Subtotal        string `json:"subtotal"`
	DiscountPercent string `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`
	Total           string `json:"total"`
	Received        string `json:"received"`
	Change          string `json:"change"`
	AmountDue       string `json:"amount_due"`
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	received, err := parseAmount(req.Received)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	totals := h.carts.Totals(req.DiscountPercent, received)
	writeJSON(w, http.StatusOK, totalsResponse{
		Subtotal:        totals.Subtotal.StringFixed(2),
		DiscountPercent: totals.DiscountPercent.StringFixed(0),
		DiscountAmount:  totals.DiscountAmount.StringFixed(2),
		Total:           totals.Total.StringFixed(2),
		Received:        totals.Received.StringFixed(2),
		Change:          totals.Change.StringFixed(2),
		AmountDue:       totals.AmountDue.StringFixed(2),
	})
}

type checkoutRequest struct {
	DiscountPercent string `json:"discount_percent"`
	Received        string `json:"received"`
	Confirmed       bool   `json:"confirmed"`
}

type warningDTO struct {
	Kind    string `json:"kind"`
	Barcode string `json:"barcode,omitempty"`
	Message string `json:"message"`
}

type checkoutResponse struct {
	SaleID      string       `json:"sale_id"`
	Status      string       `json:"status"`
	Total       string       `json:"total"`
	Received    string       `json:"received"`
	Change      string       `json:"change"`
	ReceiptPath string       `json:"receipt_path,omitempty"`
	Warnings    []warningDTO `json:"warnings,omitempty"`
	CommittedAt time.Time    `json:"committed_at"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	received, err := parseAmount(req.Received)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.checkout.Execute(r.Context(), pos.CheckoutInput{
		DiscountPercent: req.DiscountPercent,
		Received:        received,
		Confirm: pos.ConfirmerFunc(func(context.Context, pos.Summary) (bool, error) {
			return req.Confirmed, nil
		}),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	warnings := make([]warningDTO, 0, len(result.Warnings))
	for _, warn := range result.Warnings {
		warnings = append(warnings, warningDTO{
			Kind:    string(warn.Kind),
			Barcode: warn.Barcode,
			Message: warn.Message,
		})
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		SaleID:      result.SaleID,
		Status:      result.Status.String(),
		Total:       result.Totals.Total.StringFixed(2),
		Received:    result.Totals.Received.StringFixed(2),
		Change:      result.Totals.Change.StringFixed(2),
		ReceiptPath: result.ReceiptPath,
		Warnings:    warnings,
		CommittedAt: result.CommittedAt,
	})
}

type catalogItemDTO struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	Weighted bool   `json:"is_weighted"`
	Low      bool   `json:"low_stock"`
}

func toCatalogItemDTO(item appcatalog.Item) catalogItemDTO {
	return catalogItemDTO{
		Barcode:  item.Barcode,
		Name:     item.Name,
		Price:    item.Price.StringFixed(2),
		Quantity: item.Quantity.String(),
		Weighted: item.Weighted,
		Low:      item.Low,
	}
}

func (h *Handler) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := make([]catalogItemDTO, 0, len(items))
	for _, item := range items {
		dto = append(dto, toCatalogItemDTO(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": dto})
}

type upsertProductRequest struct {
	Barcode       string `json:"barcode"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	QuantityToAdd string `json:"quantity_to_add"`
}

func (h *Handler) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, err := parseAmount(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, domcatalog.ErrInvalidPrice)
		return
	}
	qty := decimal.Zero
	if strings.TrimSpace(req.QuantityToAdd) != "" {
		qty, err = decimal.NewFromString(strings.TrimSpace(req.QuantityToAdd))
		if err != nil {
			writeError(w, http.StatusBadRequest, appcatalog.ErrInvalidQuantity)
			return
		}
	}
	if err := h.catalog.Upsert(r.Context(), req.Barcode, req.Name, price, qty); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deleteProductRequest struct {
	Barcode string `json:"barcode"`
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	var req deleteProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), req.Barcode); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.LowStock(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := make([]catalogItemDTO, 0, len(items))
	for _, item := range items {
		dto = append(dto, toCatalogItemDTO(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": dto})
}

type productSalesDTO struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Revenue  string `json:"revenue"`
}

func (h *Handler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	top, err := h.reports.TopProducts(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := make([]productSalesDTO, 0, len(top))
	for _, p := range top {
		dto = append(dto, productSalesDTO{
			Name:     p.Name,
			Quantity: p.Quantity.String(),
			Revenue:  p.Revenue.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": dto})
}

func (h *Handler) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	names, err := h.reports.Receipts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": names})
}

func (h *Handler) handleViewReceipt(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	content, err := h.reports.Receipt(r.Context(), name)
	if err != nil {
		if h.notFound != nil && errors.Is(err, h.notFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (h *Handler) handleGetShopName(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"shop_name": h.settings.ShopName(r.Context())})
}

type setShopNameRequest struct {
	ShopName string `json:"shop_name"`
}

func (h *Handler) handleSetShopName(w http.ResponseWriter, r *http.Request) {
	var req setShopNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.ShopName) == "" {
		writeError(w, http.StatusBadRequest, errors.New("shop_name is required"))
		return
	}
	if err := h.settings.SaveShopName(r.Context(), strings.TrimSpace(req.ShopName)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("grocerypos.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		spanName := r.Method + " " + route
		if route == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}

		ctxWithSpan, span := tracer.Start(parentCtx,
			spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New("amount must be a decimal number")
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.New("amount must be zero or greater")
	}
	return amount, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domcart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domcart.ErrInvalidWeight),
		errors.Is(err, domcatalog.ErrNotWeighted),
		errors.Is(err, domcatalog.ErrInvalidPrice),
		errors.Is(err, domcatalog.ErrMissingField),
		errors.Is(err, appcatalog.ErrInvalidQuantity),
		errors.Is(err, domstock.ErrInsufficientStock),
		errors.Is(err, domcheckout.ErrEmptyCart),
		errors.Is(err, domcheckout.ErrInsufficientPayment):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domcheckout.ErrNotConfirmed):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
