// Package media provides directory scanning for photo and video files:
// recursive enumeration with a TTL-bounded result cache, best-effort
// dimension resolution, sorting, and filesystem-watch invalidation.
package media
