// Package startup handles configuration loading, directory validation,
// version information, and startup logging.
package startup
