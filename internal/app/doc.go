// Package app wires the brand sales web server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from environment variables and the brand rules file
//  2. Initialize logging, tracing and metrics
//  3. Build the brand classifier, file validator and report service
//  4. Register readiness checks
//  5. Set up middleware, the JSON API, the upload page and /metrics
//  6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get the configured
// shutdown timeout to finish, then telemetry providers are flushed.
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit.
package app
