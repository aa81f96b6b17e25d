package model

import "math"

// Coordinates is a WGS84 point.  Both Friend and Location embed one.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies inside the latitude range
// [-90, 90] and the longitude range [-180, 180].  NaN and infinities are
// rejected.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
