// Package breadcrumb turns a dashboard path into an ordered breadcrumb trail.
//
// Each segment is classified in order as Static (a dictionary label),
// NumericID (an all-digits segment whose preceding raw segment has a lookup
// endpoint, resolved by fetching the record) or Slug (hyphen-separated words
// in title case). Record lookups that fail degrade to "Item {id}" and never
// surface as errors.
//
// Resolver is synchronous and side-effect free apart from its Fetcher; Model
// wraps it for the Bubble Tea event loop and discards results from superseded
// paths.
package breadcrumb
