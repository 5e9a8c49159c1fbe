// Package diagram loads venue seating diagrams.
//
// A diagram file is a JSON document with a metadata block and a section
// source:
//
//	{
//	  "metadata": {"viewBox": "0,0,1000,800", "name": "Main hall"},
//	  "sources": {
//	    "section": {
//	      "type": "FeatureCollection",
//	      "features": [{
//	        "type": "Feature",
//	        "geometry": {"type": "Polygon", "coordinates": [[[-1,-1],[0,-1],[0,0]]]},
//	        "properties": {"id": "12_A", "polylabel": [[-0.4, -0.6]]}
//	      }]
//	    }
//	  }
//	}
//
// Coordinates are normalized to [-1, 1] and are mapped onto a surface with
// [geom.Transformer]. Polygon, MultiPolygon and Point geometries are
// supported; other types are skipped and counted in [Diagram.Skipped].
//
// # Section identity
//
// Feature ids are composite ("12_A", "12_B" for two halves of section 12).
// [DeriveID] reduces them to the section id that records, styles and
// interaction state are keyed by. It is applied once, at parse time, so every
// consumer sees the same id.
package diagram
