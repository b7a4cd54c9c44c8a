package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CoordinatePrecision is the number of decimal places a coordinate is
// rounded to when used as a cache key (3 decimals is roughly 111 m).
// Changing it invalidates cache equality across runs.
const CoordinatePrecision = 3

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// CoordinateKey is a coordinate rounded to CoordinatePrecision decimals.
// It is comparable and safe to use as a map key.
type CoordinateKey struct {
	Lat float64
	Lon float64
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}

// Key returns the rounded cache key for the coordinate.
func (c Coordinates) Key() CoordinateKey {
	return CoordinateKey{
		Lat: roundTo(c.Lat, CoordinatePrecision),
		Lon: roundTo(c.Lon, CoordinatePrecision),
	}
}

// String renders the key in a stable form usable as a Redis or
// single-flight key.
func (k CoordinateKey) String() string {
	return strconv.FormatFloat(k.Lat, 'f', CoordinatePrecision, 64) +
		"," + strconv.FormatFloat(k.Lon, 'f', CoordinatePrecision, 64)
}

var wktPointRe = regexp.MustCompile(`^POINT\s*\(\s*(-?[\d.]+)\s+(-?[\d.]+)\s*\)$`)

// ParseCoordinates parses a coordinate-pair string.
// Two forms are accepted, matching the upstream data sources:
//   - WKT: "POINT (lon lat)"
//   - CSV: "lat,lon"
func ParseCoordinates(s string) (Coordinates, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coordinates{}, fmt.Errorf("parse coordinates: empty string")
	}

	if m := wktPointRe.FindStringSubmatch(s); m != nil {
		lon, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("parse coordinates: longitude %q: %w", m[1], err)
		}
		lat, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("parse coordinates: latitude %q: %w", m[2], err)
		}
		return newCoordinates(lat, lon)
	}

	if strings.Contains(s, ",") {
		parts := strings.SplitN(s, ",", 2)
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("parse coordinates: latitude %q: %w", parts[0], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("parse coordinates: longitude %q: %w", parts[1], err)
		}
		return newCoordinates(lat, lon)
	}

	return Coordinates{}, fmt.Errorf("parse coordinates: unrecognized format %q", s)
}

func newCoordinates(lat, lon float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("parse coordinates: latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("parse coordinates: longitude %v out of range", lon)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}
