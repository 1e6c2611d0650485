package reportsapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"roomreports/pkg/contracts/domain"
)

// Backend endpoints
const (
	ReportsPath    = "/api/reports"
	RegeneratePath = "/api/reports/regenerate"
	CSVPath        = "/api/reports/csv"
	PDFDataPath    = "/api/reports/pdf-data"
)

// Transport is the capability set the dashboard needs from the backend.
type Transport interface {
	// Name identifies the transport in logs and metrics.
	Name() string
	GetReportsData(ctx context.Context, forceRefresh bool) (*domain.ReportPayload, error)
	RegenerateReports(ctx context.Context) error
	ExportCSV(ctx context.Context) ([]byte, error)
	GetPDFData(ctx context.Context) (domain.PDFData, error)
}

// ErrTransportMisconfigured is returned when a transport cannot issue
// requests at all because its settings are unusable.
var ErrTransportMisconfigured = errors.New("transport misconfigured")

// Options configure either transport.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string
	UserAgent string
}

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "campus-room-reports/1.0"
	maxErrorBody     = 256
)

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return o
}

// checkBaseURL reports ErrTransportMisconfigured unless base is an absolute
// http(s) URL.
func checkBaseURL(base string) error {
	if base == "" {
		return fmt.Errorf("%w: empty base URL", ErrTransportMisconfigured)
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportMisconfigured, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", ErrTransportMisconfigured, base)
	}
	return nil
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

func newStatusError(op string, code int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return &StatusError{Op: op, StatusCode: code, Body: text}
}
