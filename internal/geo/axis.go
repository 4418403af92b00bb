package geo

import "strings"

// LatLongOrder reports whether a CRS described by the given WKT declares a
// latitude-first (north/east) axis order for its own coordinates. Geodetic
// CRS definitions from EPSG, notably EPSG:4326 itself, put latitude on the
// first axis, so coordinates handed to a transform in that frame must be
// swapped before use.
//
// Only axes of the outermost CRS count: a projected CRS nests its base
// geographic CRS, whose latitude-first AXIS clauses say nothing about the
// projected coordinate order (GDAL-3 WKT1 PROJCS embeds them before the
// projection's own Easting/Northing axes). Rasters are almost always
// written with easting/longitude first; a WKT with no top-level AXIS
// declarations is treated that way.
func LatLongOrder(wkt string) bool {
	upper := strings.ToUpper(wkt)

	// Walk the WKT tracking bracket depth, skipping quoted names. The
	// outermost CRS's own AXIS clauses sit at depth 1; anything deeper
	// belongs to a nested object (GEOGCS, DATUM, base CRS).
	depth := 0
	inQuote := false
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == 'A' && depth == 1 && strings.HasPrefix(upper[i:], "AXIS["):
			clause := upper[i:]
			if end := strings.IndexByte(clause, ']'); end >= 0 {
				clause = clause[:end]
			}
			return strings.Contains(clause, "LAT") || strings.Contains(clause, "NORTH")
		}
	}
	return false
}
