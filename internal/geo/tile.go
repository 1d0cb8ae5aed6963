package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom is the deepest tile zoom level the service accepts.
const MaxZoom = 22

// MaxMercatorLat is the latitude limit of the Web Mercator projection.
const MaxMercatorLat = 85.0511

// TileAddress identifies a slippy-map tile by zoom and grid position.
type TileAddress struct {
	Z int
	X int
	Y int
}

// Validate checks that the address is a real tile: zoom within the supported
// range and x/y inside the 2^z grid. Out-of-range addresses would otherwise
// produce mathematically valid but meaningless bounding boxes.
func (t TileAddress) Validate() error {
	if t.Z < 0 || t.Z > MaxZoom {
		return fmt.Errorf("tile zoom %d out of range [0, %d]", t.Z, MaxZoom)
	}
	n := 1 << uint(t.Z)
	if t.X < 0 || t.X >= n {
		return fmt.Errorf("tile x %d out of range [0, %d) at zoom %d", t.X, n, t.Z)
	}
	if t.Y < 0 || t.Y >= n {
		return fmt.Errorf("tile y %d out of range [0, %d) at zoom %d", t.Y, n, t.Z)
	}
	return nil
}

// Bounds represents a geographic bounding box in degrees.
// North > south and east > west always hold for a valid box; boxes crossing
// the antimeridian are rejected rather than wrapped.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// NewBounds builds a validated bounding box.
func NewBounds(north, south, east, west float64) (Bounds, error) {
	if north <= south {
		return Bounds{}, fmt.Errorf("invalid bounds: north %.6f <= south %.6f", north, south)
	}
	if east <= west {
		return Bounds{}, fmt.Errorf("invalid bounds: east %.6f <= west %.6f (antimeridian-crossing boxes are not supported)", east, west)
	}
	return Bounds{North: north, South: south, East: east, West: west}, nil
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// TileToBounds returns the geographic bounds of a tile using standard
// slippy-map math (256px Web Mercator grid).
func TileToBounds(t TileAddress) Bounds {
	bound := maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Z)).Bound()
	return Bounds{
		North: bound.Max[1],
		South: bound.Min[1],
		East:  bound.Max[0],
		West:  bound.Min[0],
	}
}

// Lat2Tile returns the tile row containing the given latitude at a zoom level.
func Lat2Tile(lat float64, zoom int) int {
	tile := maptile.At(orb.Point{0, ClampLat(lat)}, maptile.Zoom(zoom))
	return int(tile.Y)
}

// Lon2Tile returns the tile column containing the given longitude at a zoom level.
func Lon2Tile(lon float64, zoom int) int {
	tile := maptile.At(orb.Point{NormalizeLon(lon), 0}, maptile.Zoom(zoom))
	return int(tile.X)
}

// TileAt returns the tile containing the point at a zoom level.
func TileAt(lat, lon float64, zoom int) TileAddress {
	tile := maptile.At(orb.Point{NormalizeLon(lon), ClampLat(lat)}, maptile.Zoom(zoom))
	return TileAddress{Z: zoom, X: int(tile.X), Y: int(tile.Y)}
}

// ClampLat clamps a latitude to the Web Mercator projection limits.
func ClampLat(lat float64) float64 {
	if lat > MaxMercatorLat {
		return MaxMercatorLat
	}
	if lat < -MaxMercatorLat {
		return -MaxMercatorLat
	}
	return lat
}

// NormalizeLon wraps a longitude into (-180, 180].
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon <= -180 {
		lon += 360
	}
	return lon
}
