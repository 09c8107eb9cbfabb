// Package preload queues background thumbnail generation for the whole video
// library at startup, in bounded batches with a queue drain between them.
package preload
