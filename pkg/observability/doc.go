/*
Package observability turns runtime lifecycle events into Prometheus metrics.

Metrics owns a private registry. Its Hooks plug into agents and routines via
their WithHooks options, ObserveFailure into a failures sink observer, and
Handler exposes everything for scraping.
*/
package observability
