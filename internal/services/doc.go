// Package services holds the service-level checks the dashboard server
// exposes next to the dashboard itself.
package services
