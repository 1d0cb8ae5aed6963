package cluster

import (
	"math"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

// DefaultRadiusPixels is the screen-space merge radius for marker clustering.
const DefaultRadiusPixels = 50.0

// metersPerDegreeLat is the approximate ground length of one degree of latitude.
const metersPerDegreeLat = 111320.0

// Property keys used on cluster features.
const (
	PropCluster       = "cluster"
	PropPointCount    = "point_count"
	PropProjectIDs    = "project_ids"
	PropStatusColor   = "status_color"
	PropTotalBudget   = "total_budget"
	PropHealthSummary = "health_summary"
)

// Cluster groups features whose pairwise ground distance at the given zoom
// level is within radiusPixels of screen space. Connectivity is resolved with
// union-find over a spatial grid index, so the result does not depend on
// input order: any permutation of the same features yields the same clusters.
// Singleton groups pass through as the original feature.
func Cluster(features []*geojson.Feature, zoom int, radiusPixels float64) []*geojson.Feature {
	if len(features) < 2 {
		return features
	}
	if radiusPixels <= 0 {
		radiusPixels = DefaultRadiusPixels
	}
	radiusMeters := geo.ClusterRadius(zoom, radiusPixels)
	cellDeg := radiusMeters / metersPerDegreeLat

	type pos struct{ lat, lon float64 }
	points := make([]pos, len(features))
	for i, f := range features {
		lat, lon := geo.FeaturePoint(f)
		points[i] = pos{lat, lon}
	}

	// Bucket by grid cell sized to the merge radius; only neighboring cells
	// can contain points within range.
	type cellKey struct{ x, y int }
	cells := make(map[cellKey][]int, len(points))
	for i, p := range points {
		k := cellKey{int(math.Floor(p.lon / cellDeg)), int(math.Floor(p.lat / cellDeg))}
		cells[k] = append(cells[k], i)
	}

	uf := newUnionFind(len(points))
	for i, p := range points {
		// Longitude degrees shrink with latitude, so the lon scan widens
		// toward the poles to still cover radiusMeters of ground.
		cosLat := math.Cos(geo.ClampLat(p.lat) * math.Pi / 180)
		spanX := 1
		if cosLat > 0 {
			spanX = int(math.Ceil(1 / cosLat))
		}
		cx := int(math.Floor(p.lon / cellDeg))
		cy := int(math.Floor(p.lat / cellDeg))
		for dx := -spanX; dx <= spanX; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range cells[cellKey{cx + dx, cy + dy}] {
					if j <= i {
						continue
					}
					q := points[j]
					if geo.Distance(p.lat, p.lon, q.lat, q.lon) <= radiusMeters {
						uf.union(i, j)
					}
				}
			}
		}
	}

	groups := make(map[int][]int)
	for i := range points {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	return emitGroups(features, groups)
}

// GridCluster buckets features into fixed grid cells of 360/2^(zoom+2)
// degrees and merges every multi-member cell into one cluster. Linear time;
// coarser grouping than Cluster but suitable for large-dataset overviews.
func GridCluster(features []*geojson.Feature, zoom int) []*geojson.Feature {
	if len(features) < 2 {
		return features
	}
	cellSize := 360.0 / math.Pow(2, float64(zoom+2))

	type cellKey struct{ x, y int }
	cells := make(map[cellKey][]int, len(features))
	for i, f := range features {
		lat, lon := geo.FeaturePoint(f)
		k := cellKey{int(math.Floor(lon / cellSize)), int(math.Floor(lat / cellSize))}
		cells[k] = append(cells[k], i)
	}

	groups := make(map[int][]int, len(cells))
	for _, members := range cells {
		groups[members[0]] = members
	}
	return emitGroups(features, groups)
}

// BuildClusterTree precomputes grid clustering for every zoom level in
// [minZoom, maxZoom], keyed by zoom. Rendering then looks up a level instead
// of re-clustering per request.
func BuildClusterTree(features []*geojson.Feature, minZoom, maxZoom int) map[int][]*geojson.Feature {
	tree := make(map[int][]*geojson.Feature, maxZoom-minZoom+1)
	for z := minZoom; z <= maxZoom; z++ {
		tree[z] = GridCluster(features, z)
	}
	return tree
}

// Expansion is the result of unpacking a cluster back into its members.
// Feature hydration from the ids is the caller's concern.
type Expansion struct {
	ProjectIDs []int64 `json:"project_ids"`
	Count      int     `json:"count"`
}

// ExpandCluster returns the member ids of a cluster.
func ExpandCluster(projectIDs []int64) Expansion {
	return Expansion{ProjectIDs: projectIDs, Count: len(projectIDs)}
}

// emitGroups converts member-index groups into output features: singletons
// pass through, larger groups become synthetic cluster features. Output is
// ordered by the smallest member project ID so results are reproducible.
func emitGroups(features []*geojson.Feature, groups map[int][]int) []*geojson.Feature {
	type group struct {
		minID   int64
		members []int
	}
	ordered := make([]group, 0, len(groups))
	for _, members := range groups {
		sort.Slice(members, func(a, b int) bool {
			return featureID(features[members[a]]) < featureID(features[members[b]])
		})
		ordered = append(ordered, group{featureID(features[members[0]]), members})
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].minID < ordered[b].minID })

	out := make([]*geojson.Feature, 0, len(ordered))
	for _, g := range ordered {
		if len(g.members) == 1 {
			out = append(out, features[g.members[0]])
			continue
		}
		members := make([]*geojson.Feature, len(g.members))
		for i, idx := range g.members {
			members[i] = features[idx]
		}
		out = append(out, newCluster(members))
	}
	return out
}

// newCluster aggregates member features into a synthetic cluster feature.
// Centroid is the arithmetic mean of member coordinates; status color follows
// worst-health-wins.
func newCluster(members []*geojson.Feature) *geojson.Feature {
	var sumLat, sumLon, totalBudget float64
	ids := make([]int64, 0, len(members))
	summary := map[string]int{
		models.HealthCritical: 0,
		models.HealthWarning:  0,
		models.HealthGood:     0,
	}

	for _, m := range members {
		lat, lon := geo.FeaturePoint(m)
		sumLat += lat
		sumLon += lon
		ids = append(ids, featureID(m))
		totalBudget += m.Properties.MustFloat64("budget", 0)
		if h, ok := m.Properties["health"].(string); ok {
			if _, tracked := summary[h]; tracked {
				summary[h]++
			}
		}
	}

	color := "green"
	switch {
	case summary[models.HealthCritical] > 0:
		color = "red"
	case summary[models.HealthWarning] > 0:
		color = "yellow"
	}

	n := float64(len(members))
	return geo.NewPointFeature(sumLat/n, sumLon/n, map[string]interface{}{
		PropCluster:       true,
		PropPointCount:    len(members),
		PropProjectIDs:    ids,
		PropStatusColor:   color,
		PropTotalBudget:   totalBudget,
		PropHealthSummary: summary,
	})
}

// featureID reads the project id property regardless of numeric type.
func featureID(f *geojson.Feature) int64 {
	switch v := f.Properties["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// unionFind is a standard disjoint-set with path compression and union by rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
