// Package geom converts diagram geometry between the normalized frame a
// seating chart is authored in and the coordinate space of a rendering
// surface.
//
// # Frames
//
// Diagram coordinates are normalized: x and y both run over [-1, 1], with y
// pointing up as in GeoJSON. A rendering surface is described by a [ViewBox]
// (minX, minY, width, height) and a [YAxis] direction:
//
//   - [YAxisUp]: map-style surfaces where y grows upward
//     (Y = minY + (y+1)·h/2)
//   - [YAxisDown]: row-major surfaces such as SVG, raster images and
//     terminals (Y = minY + (1-y)·h/2)
//
// In both cases X = minX + (x+1)·w/2. [Transformer.ToNormalized] is the exact
// inverse of [Transformer.ToSurface], so labels and hit tests can move between
// the two frames without drift.
//
// # Geometry
//
// [Geometry] is a tagged union of Point, Polygon and MultiPolygon.
// [Transformer.Geometry] maps every vertex and preserves nesting and vertex
// order. [Geometry.Contains] implements an even-odd test that honours holes,
// and it is used for pointer hit testing on surfaces that do not do their own.
package geom
