package osm

import "math"

// BBox is a geographic bounding box. The zero value means "unset".
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// PointBox returns the degenerate box holding only (lat, lng).
func PointBox(lat, lng float64) BBox {
	return BBox{MinLat: lat, MaxLat: lat, MinLng: lng, MaxLng: lng}
}

// Extend returns the smallest box holding both b and (lat, lng).
func (b BBox) Extend(lat, lng float64) BBox {
	return BBox{
		MinLat: math.Min(b.MinLat, lat),
		MaxLat: math.Max(b.MaxLat, lat),
		MinLng: math.Min(b.MinLng, lng),
		MaxLng: math.Max(b.MaxLng, lng),
	}
}

func (b BBox) IsZero() bool {
	return b == BBox{}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lng float64) {
	return b.Lerp(0.5)
}

// Lerp returns the point a fraction f along the diagonal from the
// south-west corner to the north-east corner.
func (b BBox) Lerp(f float64) (lat, lng float64) {
	return b.MinLat + (b.MaxLat-b.MinLat)*f, b.MinLng + (b.MaxLng-b.MinLng)*f
}
