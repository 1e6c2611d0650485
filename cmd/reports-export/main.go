// Command reports-export drives the reports dashboard from a terminal: it
// prints the current view, triggers refresh or regeneration, and saves
// CSV, Excel and PDF-ready exports to a directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"

	"roomreports/internal/app"
	"roomreports/internal/config"
	"roomreports/internal/exporter"
	"roomreports/internal/infrastructure"
	"roomreports/internal/reports"
	"roomreports/pkg/contracts"
	"roomreports/pkg/contracts/domain"
)

type options struct {
	Action string `validate:"oneof=show refresh regenerate csv xlsx pdf"`
	Format string `validate:"oneof=text json csv"`
	Out    string
	BOM    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("reports-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Action, "action", "show", "show, refresh, regenerate, csv, xlsx or pdf")
	fs.StringVar(&opts.Format, "format", "text", "output format for show: text, json or csv")
	fs.StringVar(&opts.Out, "out", "", "directory for exports (defaults to the configured export dir)")
	fs.BoolVar(&opts.BOM, "bom", false, "prefix csv output of show with a UTF-8 byte order mark")
	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if *version {
		opts.Action = "version"
		return opts, nil
	}
	opts.Action = strings.ToLower(opts.Action)
	opts.Format = strings.ToLower(opts.Format)

	if err := validator.New().Struct(opts); err != nil {
		return opts, fmt.Errorf("invalid flags: %w", err)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Action == "version" {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, logger, os.Stdout, os.Stderr); err != nil {
		logger.ErrorContext(ctx, "reports-export failed",
			slog.String("action", opts.Action),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	dir := opts.Out
	if dir == "" {
		var err error
		if dir, err = cfg.ExportDir(); err != nil {
			return err
		}
	}
	sink := exporter.NewDirSink(dir).WithLogger(logger)

	primary, direct := app.NewTransports(cfg.Backend)
	dashboard := reports.NewDashboard(
		reports.NewFetcher(primary, direct, logger, nil),
		reports.WithForceRefresh(cfg.Backend.ForceRefresh),
		reports.WithLogger(logger),
		reports.WithAlerter(reports.WriterAlerter{W: stderr}),
		reports.WithPDFPresenter(reports.PresenterFunc(func(ctx context.Context, data domain.PDFData) error {
			location, err := sink.Deliver(ctx, exporter.PDFDataArtifact(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "PDF report data saved to %s\n", location)
			return nil
		})),
	)

	switch opts.Action {
	case "show":
		// A failed load still prints the view with its error message
		_, err := dashboard.FetchReportData(ctx, cfg.Backend.ForceRefresh)
		if renderErr := show(stdout, dashboard.View(), opts); renderErr != nil {
			return renderErr
		}
		return err
	case "refresh":
		err := dashboard.Refresh(ctx)
		if renderErr := reports.RenderText(stdout, dashboard.View()); renderErr != nil {
			return renderErr
		}
		return err
	case "regenerate":
		err := dashboard.RegenerateReportData(ctx)
		if renderErr := reports.RenderText(stdout, dashboard.View()); renderErr != nil {
			return renderErr
		}
		return err
	case "csv":
		location, err := dashboard.ExportCSV(ctx, sink)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "CSV report saved to %s\n", location)
	case "xlsx":
		location, err := dashboard.ExportExcel(ctx, sink)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Excel report saved to %s\n", location)
	case "pdf":
		if _, err := dashboard.ExportPDF(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown action %q", opts.Action)
	}
	return nil
}

func show(w io.Writer, view reports.ViewState, opts options) error {
	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "csv":
		return exporter.NewCSVWriter(opts.BOM).WriteSheets(w, exporter.ReportSheets(view.Report()))
	default:
		return reports.RenderText(w, view)
	}
}
