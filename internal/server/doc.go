// Package server exposes the operational HTTP endpoints of a scheduled
// import: Prometheus metrics and health probes on a dedicated port.
//
// HealthChecker tracks the outcome of scheduled runs so that /readyz turns
// unhealthy after a failed run and recovers after the next good one.
package server
