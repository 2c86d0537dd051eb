// Package listview provides virtual scrolling for Bubble Tea lists.
//
// A VirtualListModel renders only the rows inside its window plus a small
// buffer. The window is either derived from the selection (standalone use)
// or set by an enclosing scroll container with SetWindow, in which case
// ViewPadded keeps every row's line position stable by emitting blank lines
// for rows outside the window. Rows may be appended while the list is on
// screen, which is how lazily paged directories grow.
package listview
