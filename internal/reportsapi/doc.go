// Package reportsapi talks to the backend reporting API.
//
// Two implementations of Transport are provided. Client is the primary
// API client built on resty; Direct issues plain HTTP requests against the
// same endpoints and is used as the fallback path. Both decode the report
// document into domain.ReportPayload without validating it, leaving
// defaults to the normalizer in package reports.
package reportsapi
