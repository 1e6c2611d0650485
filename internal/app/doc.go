// Package app wires the reports dashboard service together: configuration,
// logging and OpenTelemetry, the report transports, the dashboard, the
// live view hub, the refresh scheduler and the HTTP server.
//
// # Initialization Flow
//
//  1. Load configuration from environment and files
//  2. Initialize logging and observability
//  3. Build the API client and direct transports and the dashboard
//  4. Set up HTTP handlers and middleware
//  5. Start the hub, the scheduler and the HTTP server
//  6. Load the report once, the way the page does on mount
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit.
package app
