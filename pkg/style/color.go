// Package style colours shortest-path trees for map display.
package style

import (
	"fmt"
	"math"
)

// Color is an 8-bit RGB colour.
type Color struct {
	R, G, B uint8
}

var (
	Red       = Color{R: 255}
	Black     = Color{}
	LightGray = Color{R: 211, G: 211, B: 211}
)

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// DistanceGradient colours each vertex by its distance from the root, from
// blue at the root to red at the farthest reachable vertex. Unreachable
// vertices are Red.
func DistanceGradient[V comparable](dist map[V]float64) map[V]Color {
	var max float64
	for _, d := range dist {
		if !math.IsInf(d, 1) && d > max {
			max = d
		}
	}

	colors := make(map[V]Color, len(dist))
	for v, d := range dist {
		if math.IsInf(d, 1) {
			colors[v] = Red
			continue
		}
		intensity := 255
		if max > 0 {
			intensity = int((1 - d/max) * 255)
		}
		colors[v] = Color{R: uint8(255 - intensity), B: uint8(intensity)}
	}
	return colors
}
