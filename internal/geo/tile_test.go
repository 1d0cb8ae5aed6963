package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileAddressValidate(t *testing.T) {
	assert.NoError(t, TileAddress{Z: 0, X: 0, Y: 0}.Validate())
	assert.NoError(t, TileAddress{Z: 5, X: 31, Y: 31}.Validate())
	assert.NoError(t, TileAddress{Z: 10, X: 617, Y: 321}.Validate())

	assert.Error(t, TileAddress{Z: -1, X: 0, Y: 0}.Validate())
	assert.Error(t, TileAddress{Z: 23, X: 0, Y: 0}.Validate())
	assert.Error(t, TileAddress{Z: 5, X: 32, Y: 0}.Validate())
	assert.Error(t, TileAddress{Z: 5, X: 0, Y: -1}.Validate())
	assert.Error(t, TileAddress{Z: 0, X: 1, Y: 0}.Validate())
}

func TestTileToBoundsWorldTile(t *testing.T) {
	b := TileToBounds(TileAddress{Z: 0, X: 0, Y: 0})

	assert.InDelta(t, -180, b.West, 1e-9)
	assert.InDelta(t, 180, b.East, 1e-9)
	assert.InDelta(t, MaxMercatorLat, b.North, 0.001)
	assert.InDelta(t, -MaxMercatorLat, b.South, 0.001)
}

func TestTileRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		zoom     int
	}{
		{"moscow z10", 55.7558, 37.6173, 10},
		{"st petersburg z10", 59.9311, 30.3609, 10},
		{"equator origin z5", 0.001, 0.001, 5},
		{"southern hemisphere z8", -33.8688, 151.2093, 8},
		{"western hemisphere z12", 40.7128, -74.0060, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tile := TileAt(tc.lat, tc.lon, tc.zoom)
			require.NoError(t, tile.Validate())

			b := TileToBounds(tile)
			assert.True(t, b.Contains(tc.lat, tc.lon),
				"tile bounds %+v should contain (%f, %f)", b, tc.lat, tc.lon)

			assert.Equal(t, tile.X, Lon2Tile(tc.lon, tc.zoom))
			assert.Equal(t, tile.Y, Lat2Tile(tc.lat, tc.zoom))
		})
	}
}

func TestTileBoundsInteriorRoundTrip(t *testing.T) {
	// Any point strictly inside a tile's bounds must map back to that tile.
	tile := TileAt(55.7558, 37.6173, 11)
	b := TileToBounds(tile)

	lat := (b.North + b.South) / 2
	lon := (b.East + b.West) / 2
	assert.Equal(t, tile.X, Lon2Tile(lon, tile.Z))
	assert.Equal(t, tile.Y, Lat2Tile(lat, tile.Z))
}

func TestClampLat(t *testing.T) {
	assert.Equal(t, MaxMercatorLat, ClampLat(89.9))
	assert.Equal(t, -MaxMercatorLat, ClampLat(-90))
	assert.Equal(t, 55.75, ClampLat(55.75))
}

func TestNormalizeLon(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		37.61:  37.61,
		180:    180,
		-180:   180,
		190:    -170,
		-190:   170,
		540:    180,
		-540:   180,
		720.25: 0.25,
	}
	for in, want := range cases {
		got := NormalizeLon(in)
		assert.InDelta(t, want, got, 1e-9, "NormalizeLon(%f)", in)
		assert.True(t, got > -180 && got <= 180, "NormalizeLon(%f) = %f out of range", in, got)
	}
}

func TestNewBoundsRejectsInvalid(t *testing.T) {
	_, err := NewBounds(55, 56, 38, 37)
	assert.Error(t, err, "north below south must be rejected")

	_, err = NewBounds(56, 55, 37, 38)
	assert.Error(t, err, "antimeridian-style east<west must be rejected")

	b, err := NewBounds(56, 55, 38, 37)
	require.NoError(t, err)
	assert.True(t, b.Contains(55.5, 37.5))
	assert.False(t, b.Contains(54.9, 37.5))
}
