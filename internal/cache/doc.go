// Package cache stores JSON records with TTL expiration.
//
// FileStore persists entries as one JSON file per key under the shepherd
// cache directory (~/.shepherd/cache by default), so breadcrumb labels stay
// warm across dashboard sessions. MemoryStore keeps entries in process for
// short-lived commands and tests. Keys passed to either store are hashed
// with SHA256 by Key.
package cache
