// Package reports implements the campus room reports dashboard: loading the
// report through the primary or fallback transport, normalizing it, keeping
// the view state, and running the CSV, Excel and PDF exports.
//
// Dashboard is the entry point. Its view state is an immutable Snapshot of
// the last successful load plus a status (Idle, Loading, Error, Ready) and
// the export and PDF modal flags. Subscribers are notified on every change.
package reports
