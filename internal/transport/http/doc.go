// Package http exposes the reports dashboard over HTTP.
//
// Handlers stay thin: they parse the request, call the dashboard and render
// the result with go-chi/render. Failures are answered as RFC 7807 problem
// documents by the shared error handler:
//
//	{
//	    "type": "/errors/reports/load-failed",
//	    "title": "Bad Gateway",
//	    "status": 502,
//	    "detail": "Failed to load report data: connection refused",
//	    "instance": "/api/dashboard/refresh"
//	}
//
// Downloads are streamed as attachments with the same file names the
// command line exporter writes to disk.
package http
