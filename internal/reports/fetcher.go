package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "roomreports/internal/errors"
	"roomreports/internal/infrastructure"
	"roomreports/internal/reportsapi"
	"roomreports/pkg/contracts/domain"
)

const tracerName = "roomreports.reports"

// FetchError reports a load that failed on every path it tried.
type FetchError struct {
	// Primary is the first failure, from the primary transport when one is
	// configured, otherwise from the direct transport.
	Primary error
	// Fallback is the failure of the direct retry, nil when no retry ran.
	Fallback error
}

func (e *FetchError) Error() string {
	return e.Primary.Error()
}

func (e *FetchError) Unwrap() []error {
	if e.Fallback == nil {
		return []error{e.Primary}
	}
	return []error{e.Primary, e.Fallback}
}

// Misconfigured reports whether the primary transport could not issue
// requests because of its settings.
func (e *FetchError) Misconfigured() bool {
	return errors.Is(e.Primary, reportsapi.ErrTransportMisconfigured)
}

// Fetcher loads report data over the primary transport and retries once
// over the direct transport when the primary fails.
type Fetcher struct {
	primary reportsapi.Transport
	direct  reportsapi.Transport
	logger  *slog.Logger
	metrics *infrastructure.ReportMetrics
	tracer  trace.Tracer
}

// NewFetcher creates a fetcher. primary may be nil, in which case direct is
// the only path and is tried once. direct must not be nil.
func NewFetcher(primary, direct reportsapi.Transport, logger *slog.Logger, metrics *infrastructure.ReportMetrics) *Fetcher {
	return &Fetcher{
		primary: primary,
		direct:  direct,
		logger:  infrastructure.WithComponent(logger, "fetcher"),
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// Preferred is the transport used for calls that are not retried.
func (f *Fetcher) Preferred() reportsapi.Transport {
	if f.primary != nil {
		return f.primary
	}
	return f.direct
}

// Fetch loads the report document and returns it with the name of the
// transport that delivered it.
func (f *Fetcher) Fetch(ctx context.Context, forceRefresh bool) (*domain.ReportPayload, string, error) {
	ctx, span := f.tracer.Start(ctx, "reports.fetch",
		trace.WithAttributes(attribute.Bool("reports.force_refresh", forceRefresh)))
	defer span.End()

	if f.primary == nil {
		payload, err := f.attempt(ctx, f.direct, forceRefresh)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, "", &FetchError{Primary: err}
		}
		return payload, f.direct.Name(), nil
	}

	payload, primaryErr := f.attempt(ctx, f.primary, forceRefresh)
	if primaryErr == nil {
		return payload, f.primary.Name(), nil
	}

	f.logger.WarnContext(ctx, "Primary transport failed, retrying over direct transport",
		slog.String("transport", f.primary.Name()),
		slog.String("error", primaryErr.Error()),
		slog.Bool("misconfigured", errors.Is(primaryErr, reportsapi.ErrTransportMisconfigured)))
	f.metrics.RecordFallback(ctx)
	span.AddEvent("reports.fallback")

	payload, fallbackErr := f.attempt(ctx, f.direct, forceRefresh)
	if fallbackErr != nil {
		err := &FetchError{Primary: primaryErr, Fallback: fallbackErr}
		infrastructure.RecordError(ctx, err)
		return nil, "", err
	}
	return payload, f.direct.Name(), nil
}

// Regenerate asks the backend to recompute its aggregates.
func (f *Fetcher) Regenerate(ctx context.Context) error {
	ctx, span := f.tracer.Start(ctx, "reports.regenerate")
	defer span.End()

	err := f.Preferred().RegenerateReports(ctx)
	f.metrics.RecordRegenerate(ctx, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}

// Fresh loads a forced-refresh report over the preferred transport only.
// Exports use it so they never present stale aggregates.
func (f *Fetcher) Fresh(ctx context.Context) (*domain.ReportPayload, error) {
	return f.attempt(ctx, f.Preferred(), true)
}

func (f *Fetcher) attempt(ctx context.Context, t reportsapi.Transport, forceRefresh bool) (*domain.ReportPayload, error) {
	start := time.Now()
	payload, err := t.GetReportsData(ctx, forceRefresh)
	f.metrics.RecordFetch(ctx, t.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = &domain.ReportPayload{}
	}

	f.logger.DebugContext(ctx, "Report data received",
		slog.String("transport", t.Name()),
		slog.Duration("duration", time.Since(start)),
		slog.Int("popular_rooms", len(payload.PopularRooms)),
		slog.Int("active_users", len(payload.ActiveUsers)),
		slog.Int("months", len(payload.MonthlyActivity)))
	return payload, nil
}

func errorText(prefix string, err error) string {
	return fmt.Sprintf("%s: %s", prefix, err.Error())
}

// loadErrorMessage is the user-facing text for a failed load.
func loadErrorMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Misconfigured() {
		return errorText("Failed to load report data", fmt.Errorf("API configuration error - %w", fe.Primary))
	}
	return errorText("Failed to load report data", err)
}

// classify wraps a backend failure with the user-facing message: a
// misconfigured transport, a non-2xx answer, or an unreachable backend.
func classify(message string, err error) *apierrors.AppError {
	if errors.Is(err, reportsapi.ErrTransportMisconfigured) {
		return apierrors.NewConfigError(message, err)
	}
	var se *reportsapi.StatusError
	if errors.As(err, &se) {
		return apierrors.NewUpstreamError(message, err).WithContext("upstream_status", se.StatusCode)
	}
	return apierrors.NewNetworkError(message, err)
}
