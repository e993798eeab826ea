// Package geo assigns service requests to city neighborhoods.
package geo

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"phl311.app/bot/internal/model"
)

var ErrNoNeighborhoods = errors.New("no neighborhood polygons found")

// Locator resolves a coordinate to a neighborhood name.
type Locator interface {
	Locate(lat, lon float64) (string, bool)
}

type neighborhood struct {
	name  string
	bound orb.Bound
	geom  orb.Geometry
}

// Neighborhoods is an immutable polygon index loaded from GeoJSON.
type Neighborhoods struct {
	areas []neighborhood
}

// Load reads a GeoJSON FeatureCollection from path. nameKey is the feature
// property holding the neighborhood name.
func Load(path, nameKey string) (*Neighborhoods, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading neighborhoods: %w", err)
	}
	return Parse(data, nameKey)
}

func Parse(data []byte, nameKey string) (*Neighborhoods, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing neighborhoods geojson: %w", err)
	}

	n := &Neighborhoods{}
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		name := f.Properties.MustString(nameKey, "")
		if name == "" {
			continue
		}
		n.areas = append(n.areas, neighborhood{
			name:  name,
			bound: f.Geometry.Bound(),
			geom:  f.Geometry,
		})
	}

	if len(n.areas) == 0 {
		return nil, ErrNoNeighborhoods
	}
	return n, nil
}

// Locate returns the first neighborhood whose polygon contains the point.
func (n *Neighborhoods) Locate(lat, lon float64) (string, bool) {
	pt := orb.Point{lon, lat}
	for _, a := range n.areas {
		if !a.bound.Contains(pt) {
			continue
		}
		switch g := a.geom.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return a.name, true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return a.name, true
			}
		}
	}
	return "", false
}

// Len returns the number of loaded neighborhoods.
func (n *Neighborhoods) Len() int {
	return len(n.areas)
}

// Located pairs a request with the neighborhood it falls in.
type Located struct {
	Request      model.ServiceRequest
	Neighborhood string
}

// Geocode keeps the requests that have coordinates inside some neighborhood.
func Geocode(l Locator, requests []model.ServiceRequest) []Located {
	located := make([]Located, 0, len(requests))
	for _, r := range requests {
		if !r.HasLocation() {
			continue
		}
		name, ok := l.Locate(*r.Lat, *r.Lon)
		if !ok {
			continue
		}
		located = append(located, Located{Request: r, Neighborhood: name})
	}
	return located
}

// NeighborhoodOf is the group key for Located records.
func NeighborhoodOf(l Located) string {
	return l.Neighborhood
}
