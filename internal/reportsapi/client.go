package reportsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"roomreports/pkg/contracts/domain"
)

// Client is the primary transport, an API client built on resty.
type Client struct {
	http      *resty.Client
	configErr error
}

// NewClient builds the API client. An unusable base URL does not fail
// construction; every call then returns ErrTransportMisconfigured so the
// caller can fall back.
func NewClient(opts Options) *Client {
	opts = opts.withDefaults()

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent)
	if opts.AuthToken != "" {
		rc.SetAuthToken(opts.AuthToken)
	}

	return &Client{
		http:      rc,
		configErr: checkBaseURL(opts.BaseURL),
	}
}

// Name implements Transport.
func (c *Client) Name() string { return "api-client" }

// GetReportsData implements Transport.
func (c *Client) GetReportsData(ctx context.Context, forceRefresh bool) (*domain.ReportPayload, error) {
	body, err := c.do(ctx, "get reports", resty.MethodGet, ReportsPath, map[string]string{
		"forceRefresh": strconv.FormatBool(forceRefresh),
	})
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
func (c *Client) RegenerateReports(ctx context.Context) error {
	_, err := c.do(ctx, "regenerate reports", resty.MethodPost, RegeneratePath, nil)
	return err
}

// ExportCSV implements Transport.
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "export csv", resty.MethodGet, CSVPath, nil)
}

// GetPDFData implements Transport.
func (c *Client) GetPDFData(ctx context.Context) (domain.PDFData, error) {
	body, err := c.do(ctx, "get pdf data", resty.MethodGet, PDFDataPath, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get pdf data: response is not valid JSON")
	}
	return domain.PDFData(body), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query map[string]string) ([]byte, error) {
	if c.configErr != nil {
		return nil, fmt.Errorf("%s: %w", op, c.configErr)
	}

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, newStatusError(op, resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}
