// Package lazy builds visibility-triggered loaders on top of package observer:
// Image fetches a picture once its region is seen, Loader runs an arbitrary
// async load with automatic retry and backoff, and List pages through a
// collection as its end sentinel scrolls into view.
//
// Every type is a Bubble Tea component fragment: construct it, Attach it to a
// page region, and route every message through Update.
package lazy
