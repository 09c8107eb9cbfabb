// Package middleware provides the HTTP middleware chain: W3C access logging,
// Prometheus request metrics, and gzip compression.
package middleware
