package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// NewPointFeature creates a GeoJSON point feature with the given properties.
// Coordinates follow the GeoJSON convention: longitude first.
func NewPointFeature(lat, lon float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lon, lat})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// NewFeatureCollection wraps features into a GeoJSON FeatureCollection.
func NewFeatureCollection(features []*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = features
	if fc.Features == nil {
		fc.Features = []*geojson.Feature{}
	}
	return fc
}

// FeaturePoint extracts the lat/lon of a point feature.
func FeaturePoint(f *geojson.Feature) (lat, lon float64) {
	p := f.Geometry.(orb.Point)
	return p.Lat(), p.Lon()
}
