// Package handlers implements the HTTP API: gallery listings, thumbnail and
// media serving, stats endpoints, and health probes.
package handlers
