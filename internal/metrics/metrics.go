package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const meterName = "github.com/example/meridian"

// StoreMetrics holds the business instruments recorded by the fulfillment
// engine and handlers.
type StoreMetrics struct {
	OrdersPlaced     metric.Int64Counter
	CheckoutFailures metric.Int64Counter
	StockConflicts   metric.Int64Counter
	RevenueTotal     metric.Float64Counter
}

// New creates the instruments from the globally registered meter provider.
// Without a provider configured the instruments are no-ops, which keeps
// tests and local runs free of exporter setup.
func New() *StoreMetrics {
	meter := otel.Meter(meterName)

	ordersPlaced, _ := meter.Int64Counter("store.orders.placed",
		metric.WithDescription("Orders successfully placed"))
	checkoutFailures, _ := meter.Int64Counter("store.checkout.failures",
		metric.WithDescription("Checkout attempts that did not produce an order"))
	stockConflicts, _ := meter.Int64Counter("store.checkout.stock_conflicts",
		metric.WithDescription("Checkouts aborted by the inventory ledger"))
	revenueTotal, _ := meter.Float64Counter("store.revenue.total",
		metric.WithDescription("Revenue from placed orders"))

	return &StoreMetrics{
		OrdersPlaced:     ordersPlaced,
		CheckoutFailures: checkoutFailures,
		StockConflicts:   stockConflicts,
		RevenueTotal:     revenueTotal,
	}
}

// Init wires an OTLP HTTP exporter, registers the global meter provider and
// returns the instruments plus the provider for shutdown.
func Init(ctx context.Context, serviceName, endpoint string) (*StoreMetrics, *sdkmetric.MeterProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(provider)

	return New(), provider, nil
}

// WithPaymentMethod tags a measurement with the order's payment method.
func WithPaymentMethod(method string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("payment_method", method))
}

// WithReason tags a failure measurement with its cause.
func WithReason(reason string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("reason", reason))
}
