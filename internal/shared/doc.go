// Package shared holds helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage captures slog output so tests can assert on
// what a handler or middleware logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	handler := NewHealthHandler(svc, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "health degraded")
package shared
