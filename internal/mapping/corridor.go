package mapping

import (
	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/zonecluster"
)

// Corridor is an ordered pair of cluster labels (spec GLOSSARY).
type Corridor struct {
	A, B int
	Cost float64 // routing(medoid(a), medoid(b))
}

// CorridorMapping is the clustering-variant mapping plus the C² corridor
// table and cluster membership lists (spec §4.2 "Corridor variant").
type CorridorMapping struct {
	*AggregatedMapping
	Clustering *zonecluster.Clustering
	Corridors  []Corridor // all C² ordered pairs, including self-pairs
	// Members[a] lists station indices with cluster label a, ascending.
	Members map[int][]problemdata.StationIndex
}

// BuildCorridor runs clustering then builds the corridor table.
func BuildCorridor(pd *problemdata.ProblemData, params Params, clusterParams zonecluster.Params) (*CorridorMapping, error) {
	agg, err := BuildAggregated(pd, params)
	if err != nil {
		return nil, err
	}

	clustering, err := zonecluster.Build(pd, clusterParams)
	if err != nil {
		return nil, err
	}

	cm := &CorridorMapping{
		AggregatedMapping: agg,
		Clustering:        clustering,
		Members:           make(map[int][]problemdata.StationIndex),
	}
	for _, c := range clustering.Clusters {
		cm.Members[c.Label] = c.Members
	}

	numClusters := len(clustering.Clusters)
	medoidOf := make(map[int]problemdata.StationIndex, numClusters)
	for _, c := range clustering.Clusters {
		medoidOf[c.Label] = c.Medoid
	}

	for a := 1; a <= numClusters; a++ {
		for b := 1; b <= numClusters; b++ {
			cost, err := pd.RoutingCostByIndex(medoidOf[a], medoidOf[b])
			if err != nil {
				return nil, err
			}
			cm.Corridors = append(cm.Corridors, Corridor{A: a, B: b, Cost: cost})
		}
	}

	return cm, nil
}

// CorridorIndex returns the position of corridor (a,b) in Corridors, which
// always holds the full C² grid in (a then b) row-major order. Labels are
// not range-checked; labels outside 1..C yield a position outside the grid.
func (cm *CorridorMapping) CorridorIndex(a, b int) int {
	numClusters := len(cm.Clustering.Clusters)
	return (a-1)*numClusters + (b - 1)
}
