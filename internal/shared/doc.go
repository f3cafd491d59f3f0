// Package shared holds helpers used across the brandsales packages that do not
// belong to a single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, a slog.Handler that records log output for assertions
//   - Sales report fixtures in CSV and in-memory form
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    report := testutil.SampleReport()
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "report aggregated")
//	}
//
// Nothing in this package may import business packages under internal/.
package shared
