package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "roomreports/internal/errors"
	"roomreports/internal/exporter"
	"roomreports/internal/middleware"
	"roomreports/internal/reports"
	"roomreports/pkg/contracts/domain"
)

// DashboardService is the part of the reports dashboard the handler drives
type DashboardService interface {
	View() reports.ViewState
	FetchReportData(ctx context.Context, forceRefresh bool) (*domain.Report, error)
	Refresh(ctx context.Context) error
	RegenerateReportData(ctx context.Context) error
	ExportCSV(ctx context.Context, sink exporter.Sink) (string, error)
	ExportExcel(ctx context.Context, sink exporter.Sink) (string, error)
	ExportPDF(ctx context.Context) (domain.PDFData, error)
	ClosePDFReport()
}

// DashboardHandler serves the dashboard state and its actions
type DashboardHandler struct {
	service       DashboardService
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
	params        *middleware.QueryParamValidator
	exportTimeout time.Duration
}

// NewDashboardHandler creates a dashboard handler. exportTimeout bounds
// each download; zero leaves it to the request context.
func NewDashboardHandler(service DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, exportTimeout time.Duration) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &DashboardHandler{
		service:       service,
		logger:        logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:  errorHandler,
		params:        middleware.NewQueryParamValidator(logger, errorHandler),
		exportTimeout: exportTimeout,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetState)
	r.Post("/refresh", h.Refresh)
	r.Post("/regenerate", h.Regenerate)

	r.Route("/export", func(r chi.Router) {
		r.Get("/csv", h.ExportCSV)
		r.Get("/xlsx", h.ExportExcel)
		r.Post("/pdf", h.OpenPDF)
		r.Delete("/pdf", h.ClosePDF)
	})

	return r
}

// GetState handles GET /api/dashboard. ?format=text returns the rendered
// text view instead of JSON.
func (h *DashboardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	format, ok := h.params.ValidateEnum(w, r, "format", []string{"json", "text"}, "json")
	if !ok {
		return
	}

	view := h.service.View()
	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := reports.RenderText(w, view); err != nil {
			h.logger.WarnContext(r.Context(), "failed to write text view", slog.String("error", err.Error()))
		}
		return
	}
	render.JSON(w, r, view)
}

// Refresh handles POST /api/dashboard/refresh. Without ?force the
// configured flag is used.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var err error
	if r.URL.Query().Has("force") {
		force, ok := h.params.ValidateBool(w, r, "force", true)
		if !ok {
			return
		}
		_, err = h.service.FetchReportData(r.Context(), force)
	} else {
		err = h.service.Refresh(r.Context())
	}

	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.View())
}

// Regenerate handles POST /api/dashboard/regenerate
func (h *DashboardHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RegenerateReportData(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.View())
}

// ExportCSV handles GET /api/dashboard/export/csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "csv", h.service.ExportCSV)
}

// ExportExcel handles GET /api/dashboard/export/xlsx
func (h *DashboardHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "xlsx", h.service.ExportExcel)
}

func (h *DashboardHandler) download(w http.ResponseWriter, r *http.Request, format string,
	export func(context.Context, exporter.Sink) (string, error)) {
	ctx, cancel := h.exportContext(r.Context())
	defer cancel()

	sink := &attachmentSink{w: w}
	name, err := export(ctx, sink)
	if err != nil {
		if sink.written {
			// Headers are gone; the client sees a truncated download
			h.logger.ErrorContext(ctx, "download interrupted",
				slog.String("format", format),
				slog.String("error", err.Error()))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "report downloaded", slog.String("file", name))
}

// OpenPDF handles POST /api/dashboard/export/pdf. The PDF-ready data is
// returned and the report modal is opened in the view.
func (h *DashboardHandler) OpenPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.exportContext(r.Context())
	defer cancel()

	data, err := h.service.ExportPDF(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"showPdfReport": true,
		"pdfData":       data,
	})
}

// ClosePDF handles DELETE /api/dashboard/export/pdf
func (h *DashboardHandler) ClosePDF(w http.ResponseWriter, r *http.Request) {
	h.service.ClosePDFReport()
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHandler) exportContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.exportTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.exportTimeout)
}

// attachmentSink delivers an artifact as the HTTP response body
type attachmentSink struct {
	w       http.ResponseWriter
	written bool
}

func (s *attachmentSink) Deliver(ctx context.Context, a exporter.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	header := s.w.Header()
	header.Set("Content-Type", a.ContentType)
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
	header.Set("Content-Length", strconv.Itoa(len(a.Data)))
	header.Set("Cache-Control", "no-store")

	s.written = true
	s.w.WriteHeader(http.StatusOK)
	if _, err := s.w.Write(a.Data); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Name, err)
	}
	return a.Name, nil
}
