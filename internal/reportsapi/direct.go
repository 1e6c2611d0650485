package reportsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"roomreports/pkg/contracts/domain"
)

// Direct is the fallback transport: bare HTTP requests against the
// reporting endpoints with no client-side machinery in between.
type Direct struct {
	baseURL   string
	client    *http.Client
	userAgent string
	authToken string
	configErr error
}

// NewDirect builds the fallback transport.
func NewDirect(opts Options) *Direct {
	opts = opts.withDefaults()
	return &Direct{
		baseURL:   opts.BaseURL,
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		authToken: opts.AuthToken,
		configErr: checkBaseURL(opts.BaseURL),
	}
}

// Name implements Transport.
func (d *Direct) Name() string { return "direct-http" }

// GetReportsData implements Transport.
func (d *Direct) GetReportsData(ctx context.Context, forceRefresh bool) (*domain.ReportPayload, error) {
	q := url.Values{}
	q.Set("forceRefresh", strconv.FormatBool(forceRefresh))

	body, err := d.do(ctx, "get reports", http.MethodGet, ReportsPath, q)
	if err != nil {
		return nil, err
	}

	var payload domain.ReportPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return &payload, nil
}

// RegenerateReports implements Transport.
func (d *Direct) RegenerateReports(ctx context.Context) error {
	_, err := d.do(ctx, "regenerate reports", http.MethodPost, RegeneratePath, nil)
	return err
}

// ExportCSV implements Transport.
func (d *Direct) ExportCSV(ctx context.Context) ([]byte, error) {
	return d.do(ctx, "export csv", http.MethodGet, CSVPath, nil)
}

// GetPDFData implements Transport.
func (d *Direct) GetPDFData(ctx context.Context) (domain.PDFData, error) {
	body, err := d.do(ctx, "get pdf data", http.MethodGet, PDFDataPath, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get pdf data: response is not valid JSON")
	}
	return domain.PDFData(body), nil
}

func (d *Direct) do(ctx context.Context, op, method, path string, query url.Values) ([]byte, error) {
	if d.configErr != nil {
		return nil, fmt.Errorf("%s: %w", op, d.configErr)
	}

	target := d.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	if d.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.authToken)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(op, resp.StatusCode, body)
	}
	return body, nil
}
