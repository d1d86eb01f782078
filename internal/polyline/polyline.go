// Package polyline encodes GPS paths in the encoded polyline format at
// 5 decimal places of precision.
package polyline

import (
	"fmt"

	gpolyline "github.com/twpayne/go-polyline"
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Encode returns the encoded polyline for points. No points encode to "".
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(gpolyline.EncodeCoords(coords))
}

// Decode parses an encoded polyline back into points.
func Decode(s string) ([]Point, error) {
	if s == "" {
		return []Point{}, nil
	}

	coords, rest, err := gpolyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("decoding polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("decoding polyline: %d trailing bytes", len(rest))
	}

	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{Lat: c[0], Lon: c[1]}
	}
	return points, nil
}
