package reports

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"roomreports/pkg/contracts/domain"
)

// Export failure messages shown to the user
const (
	AlertCSVFailed   = "Failed to download CSV report. Please try again."
	AlertExcelFailed = "Failed to generate Excel report. Please try again."
	AlertPDFFailed   = "Failed to generate PDF report. Please try again."
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(ctx context.Context, message string)

// Alert implements Alerter.
func (f AlerterFunc) Alert(ctx context.Context, message string) { f(ctx, message) }

// WriterAlerter prints alerts to a terminal.
type WriterAlerter struct {
	W io.Writer
}

// Alert implements Alerter.
func (a WriterAlerter) Alert(_ context.Context, message string) {
	fmt.Fprintf(a.W, "ALERT: %s\n", message)
}

// PDFPresenter displays PDF-ready report data. Rendering the document is
// its job; the dashboard only hands the data over.
type PDFPresenter interface {
	Present(ctx context.Context, data domain.PDFData) error
}

// PresenterFunc adapts a function to PDFPresenter.
type PresenterFunc func(ctx context.Context, data domain.PDFData) error

// Present implements PDFPresenter.
func (f PresenterFunc) Present(ctx context.Context, data domain.PDFData) error { return f(ctx, data) }

// modalPresenter opens the PDF report modal in the view state.
type modalPresenter struct {
	state  *State
	logger *slog.Logger
}

func (p modalPresenter) Present(ctx context.Context, data domain.PDFData) error {
	p.state.openPDF(data)
	p.logger.DebugContext(ctx, "PDF report modal opened", slog.Int("bytes", len(data)))
	return nil
}
