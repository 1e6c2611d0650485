package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	apierrors "roomreports/internal/errors"
	"roomreports/internal/exporter"
	"roomreports/internal/infrastructure"
	"roomreports/pkg/contracts/domain"
)

// Dashboard is the admin reports view: it owns the view state and runs
// loads, regeneration and exports against the backend.
type Dashboard struct {
	fetcher      *Fetcher
	state        *State
	group        singleflight.Group
	forceRefresh bool

	alerter   Alerter
	presenter PDFPresenter
	logger    *slog.Logger
	metrics   *infrastructure.ReportMetrics
	now       func() time.Time
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithForceRefresh sets the forceRefresh flag used by Refresh. Default true.
func WithForceRefresh(force bool) Option {
	return func(d *Dashboard) { d.forceRefresh = force }
}

// WithAlerter sets where export failure messages are shown. They are always
// recorded in the view state as well.
func WithAlerter(a Alerter) Option {
	return func(d *Dashboard) { d.alerter = a }
}

// WithPDFPresenter replaces the default presenter, which opens the PDF
// report modal in the view state.
func WithPDFPresenter(p PDFPresenter) Option {
	return func(d *Dashboard) { d.presenter = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dashboard) { d.logger = l }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *infrastructure.ReportMetrics) Option {
	return func(d *Dashboard) { d.metrics = m }
}

// WithClock overrides time.Now for snapshot and alert timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// NewDashboard creates a dashboard in the Idle state.
func NewDashboard(fetcher *Fetcher, opts ...Option) *Dashboard {
	d := &Dashboard{
		fetcher:      fetcher,
		state:        NewState(),
		forceRefresh: true,
		logger:       infrastructure.GetLogger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = infrastructure.WithComponent(d.logger, "dashboard")
	if d.presenter == nil {
		d.presenter = modalPresenter{state: d.state, logger: d.logger}
	}
	return d
}

// View returns the current view state.
func (d *Dashboard) View() ViewState {
	return d.state.View()
}

// Subscribe registers fn for view state changes. See State.Subscribe.
func (d *Dashboard) Subscribe(fn func(ViewState)) (unsubscribe func()) {
	return d.state.Subscribe(fn)
}

func fetchKey(forceRefresh bool) string {
	return "reports:" + strconv.FormatBool(forceRefresh)
}

// FetchReportData loads, normalizes and publishes the report. Calls with
// the same flag that overlap share one backend request. The load keeps
// running and updates the view even if ctx is cancelled while waiting.
func (d *Dashboard) FetchReportData(ctx context.Context, forceRefresh bool) (*domain.Report, error) {
	detached := context.WithoutCancel(ctx)
	ch := d.group.DoChan(fetchKey(forceRefresh), func() (any, error) {
		return d.load(detached, forceRefresh)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		report := res.Val.(domain.Report)
		return &report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Dashboard) load(ctx context.Context, forceRefresh bool) (domain.Report, error) {
	seq := d.state.beginFetch()

	payload, source, err := d.fetcher.Fetch(ctx, forceRefresh)
	if err != nil {
		msg := loadErrorMessage(err)
		d.logger.ErrorContext(ctx, "Error fetching report data",
			slog.String("error", err.Error()),
			slog.Bool("force_refresh", forceRefresh))
		if !d.state.failFetch(seq, msg) {
			d.logger.DebugContext(ctx, "Discarded stale load failure", slog.Uint64("seq", seq))
		}
		return domain.Report{}, classify(msg, err).WithContext("operation", apierrors.OpLoad)
	}

	report := Normalize(payload)
	snap := &Snapshot{Report: report, FetchedAt: d.now(), Source: source}
	if !d.state.completeFetch(seq, snap) {
		d.logger.DebugContext(ctx, "Discarded stale load result", slog.Uint64("seq", seq))
	}

	d.logger.InfoContext(ctx, "Report data loaded",
		slog.String("source", source),
		slog.Int64("total_reservations", report.Stats.TotalReservations))
	return report, nil
}

// Refresh is the refresh trigger: it bumps the trigger counter and loads
// with the configured forceRefresh flag.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.state.bumpRefreshTrigger()
	_, err := d.FetchReportData(ctx, d.forceRefresh)
	return err
}

// RegenerateReportData asks the backend to recompute its aggregates and
// then always loads the report again. A regeneration failure stays visible
// unless the following load fails too.
func (d *Dashboard) RegenerateReportData(ctx context.Context) error {
	d.state.beginLoading()
	regenErr := d.fetcher.Regenerate(ctx)
	d.state.endLoading()

	var regenMsg string
	if regenErr != nil {
		regenMsg = errorText("Failed to regenerate reports", regenErr)
		d.logger.ErrorContext(ctx, "Error regenerating reports", slog.String("error", regenErr.Error()))
		d.state.setError(regenMsg)
		regenErr = classify(regenMsg, regenErr).WithContext("operation", apierrors.OpRegenerate)
	}

	// Do not join a load that started before the backend recomputed
	key := fetchKey(d.forceRefresh)
	d.group.Forget(key)

	_, fetchErr := d.FetchReportData(ctx, d.forceRefresh)
	if regenErr != nil && fetchErr == nil {
		d.state.setError(regenMsg)
	}
	return errors.Join(regenErr, fetchErr)
}

// ExportCSV downloads the backend CSV report and delivers it to sink.
func (d *Dashboard) ExportCSV(ctx context.Context, sink exporter.Sink) (string, error) {
	var location string
	err := d.runExport(ctx, "csv", AlertCSVFailed, func(ctx context.Context) (int, error) {
		data, err := d.fetcher.Preferred().ExportCSV(ctx)
		if err != nil {
			return 0, err
		}
		location, err = sink.Deliver(ctx, exporter.CSVArtifact(data))
		return len(data), err
	})
	return location, err
}

// ExportExcel loads fresh report data and delivers it as a workbook.
func (d *Dashboard) ExportExcel(ctx context.Context, sink exporter.Sink) (string, error) {
	var location string
	err := d.runExport(ctx, "xlsx", AlertExcelFailed, func(ctx context.Context) (int, error) {
		payload, err := d.fetcher.Fresh(ctx)
		if err != nil {
			return 0, err
		}
		data, err := exporter.BuildWorkbook(Normalize(payload))
		if err != nil {
			return 0, err
		}
		location, err = sink.Deliver(ctx, exporter.XLSXArtifact(data))
		return len(data), err
	})
	return location, err
}

// ExportPDF loads the PDF-ready data and hands it to the PDF presenter.
func (d *Dashboard) ExportPDF(ctx context.Context) (domain.PDFData, error) {
	var data domain.PDFData
	err := d.runExport(ctx, "pdf", AlertPDFFailed, func(ctx context.Context) (int, error) {
		var err error
		data, err = d.fetcher.Preferred().GetPDFData(ctx)
		if err != nil {
			return 0, err
		}
		return len(data), d.presenter.Present(ctx, data)
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ClosePDFReport closes the PDF report modal.
func (d *Dashboard) ClosePDFReport() {
	d.state.closePDF()
}

// runExport keeps the exporting flag raised while fn runs. A failure,
// including a panic in fn, is logged, alerted and returned; it never
// changes the load status.
func (d *Dashboard) runExport(ctx context.Context, format, alert string, fn func(context.Context) (int, error)) (err error) {
	d.state.beginExport()
	start := time.Now()
	size := 0

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		d.state.endExport()
		d.metrics.RecordExport(ctx, format, time.Since(start), size, err)

		if err != nil {
			d.logger.ErrorContext(ctx, "Export failed",
				slog.String("format", format),
				slog.String("error", err.Error()))
			d.state.recordAlert(alert, d.now())
			if d.alerter != nil {
				d.alerter.Alert(ctx, alert)
			}
			err = apierrors.NewExportError(format, alert, err)
			return
		}
		d.logger.InfoContext(ctx, "Export completed",
			slog.String("format", format),
			slog.Int("bytes", size),
			slog.Duration("duration", time.Since(start)))
	}()

	size, err = fn(ctx)
	return err
}
