// Package cache implements a generic TTL cache used by the directory
// scanner. Entries expire a fixed duration after insertion and are evicted
// lazily on access or by an explicit sweep.
package cache
