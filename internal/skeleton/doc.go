// Package skeleton builds placeholder layouts shaped like the content they
// stand in for (card grids, avatar lists, tables, forms) and renders them as
// shaded bars with an optional shimmer animation.
//
// Build is purely structural: the same Options always produce the same Shape
// whether or not Animate is set.
package skeleton
