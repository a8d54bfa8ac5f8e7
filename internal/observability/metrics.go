package observability

const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MCheckoutWarnings    MetricKey = "checkout_warnings_total"
	MLowStockAlerts      MetricKey = "low_stock_alerts_total"
)
