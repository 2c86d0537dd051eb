// Package church holds the in-memory congregation dataset behind the
// dashboard and the mock HTTP API that serves it.
package church
