// Package observer tracks whether a region of a scrollable render surface has
// entered the visible viewport.
//
// It is the terminal counterpart of the browser's intersection observer and
// runs entirely inside the Bubble Tea event loop:
//   - Service is the injected intersection primitive (Observe / Disconnect)
//   - ViewportService implements Service over a line-addressed page
//   - Observer is the per-region state machine exposing InView and the sticky
//     HasBeenInView, with optional entry delay and one-shot observation
//   - Scheduler produces cancellable delay commands shared by the lazy loaders
//
// A nil Service, or one reporting ErrUnsupported, degrades to "always visible"
// so content is never hidden behind a missing primitive.
package observer
