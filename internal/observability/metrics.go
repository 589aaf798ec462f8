package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics exposes application-level instruments for the commerce core.
type Metrics struct {
	ordersCompleted  metric.Int64Counter
	rewardsGranted   metric.Int64Counter
	rewardsCanceled  metric.Int64Counter
	togglesApplied   metric.Int64Counter
	counterDrift     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.OtelEnabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.OtelExporterProtocol, cfg.OtelExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down meter provider")
			return provider.Shutdown(ctx)
		},
	})

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.OtelExporterEndpoint),
		zap.String("protocol", cfg.OtelExporterProtocol),
	)
	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch protocol {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "grpc", "":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}

// New builds the application instruments on the registered provider.
func New(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter("coursehive")

	ordersCompleted, err := meter.Int64Counter("coursehive.orders.completed")
	if err != nil {
		return nil, err
	}
	rewardsGranted, err := meter.Int64Counter("coursehive.rewards.granted")
	if err != nil {
		return nil, err
	}
	rewardsCanceled, err := meter.Int64Counter("coursehive.rewards.canceled")
	if err != nil {
		return nil, err
	}
	togglesApplied, err := meter.Int64Counter("coursehive.toggles.applied")
	if err != nil {
		return nil, err
	}
	counterDrift, err := meter.Int64Counter("coursehive.subscribers.drift_repaired")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersCompleted: ordersCompleted,
		rewardsGranted:  rewardsGranted,
		rewardsCanceled: rewardsCanceled,
		togglesApplied:  togglesApplied,
		counterDrift:    counterDrift,
	}, nil
}

func (m *Metrics) RecordOrderCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersCompleted.Add(ctx, 1)
}

func (m *Metrics) RecordRewardGranted(ctx context.Context, sourceKind string) {
	if m == nil {
		return
	}
	m.rewardsGranted.Add(ctx, 1, metric.WithAttributes(attribute.String("source_kind", sourceKind)))
}

func (m *Metrics) RecordRewardCanceled(ctx context.Context) {
	if m == nil {
		return
	}
	m.rewardsCanceled.Add(ctx, 1)
}

func (m *Metrics) RecordToggle(ctx context.Context, kind string, added bool) {
	if m == nil {
		return
	}
	m.togglesApplied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("added", added),
	))
}

func (m *Metrics) RecordDriftRepaired(ctx context.Context, channels int64) {
	if m == nil {
		return
	}
	m.counterDrift.Add(ctx, channels)
}
