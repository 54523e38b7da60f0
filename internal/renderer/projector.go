package renderer

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/transport-catalogue/internal/geo"
)

const epsilon = 1e-6

// SphereProjector maps coordinates onto the canvas, fitting the bounding box
// of the given points inside the padding.
type SphereProjector struct {
	padding float64
	minLon  float64
	maxLat  float64
	zoom    float64
}

func isZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// NewSphereProjector computes the zoom for points. Zero-size spans are
// ignored; with no usable span the zoom is 0 and every point lands on the
// padding corner.
func NewSphereProjector(points []geo.Coordinates, width, height, padding float64) SphereProjector {
	p := SphereProjector{padding: padding}
	if len(points) == 0 {
		return p
	}

	mp := make(orb.MultiPoint, len(points))
	for i, c := range points {
		mp[i] = orb.Point{c.Lng, c.Lat}
	}
	bound := mp.Bound()
	p.minLon = bound.Min.Lon()
	p.maxLat = bound.Max.Lat()

	var widthZoom, heightZoom float64
	hasWidth := !isZero(bound.Max.Lon() - bound.Min.Lon())
	hasHeight := !isZero(bound.Max.Lat() - bound.Min.Lat())
	if hasWidth {
		widthZoom = (width - 2*padding) / (bound.Max.Lon() - bound.Min.Lon())
	}
	if hasHeight {
		heightZoom = (height - 2*padding) / (bound.Max.Lat() - bound.Min.Lat())
	}

	switch {
	case hasWidth && hasHeight:
		p.zoom = math.Min(widthZoom, heightZoom)
	case hasWidth:
		p.zoom = widthZoom
	case hasHeight:
		p.zoom = heightZoom
	}
	return p
}

// Project converts coordinates to canvas units.
func (p SphereProjector) Project(c geo.Coordinates) Point {
	return Point{
		X: (c.Lng-p.minLon)*p.zoom + p.padding,
		Y: (p.maxLat-c.Lat)*p.zoom + p.padding,
	}
}
