package mapping

import (
	"sort"

	"github.com/antigravity/stationselect/internal/problemdata"
)

// AggregatedMapping is the aggregated-OD + feasible-pair mapping shared by
// the clustering and corridor variants (spec §4.2, time dimension
// collapsed; no detour tables).
type AggregatedMapping struct {
	PD     *problemdata.ProblemData
	Params Params

	// Omega[s] is the ordered list of distinct OD pairs in scenario s.
	Omega map[int][]ODPair
	// Q[s][od] is the total request count for that pair in scenario s.
	Q map[int]map[ODPair]int

	FeasiblePairs FeasiblePairs // nil when walking limits are off
}

// BuildAggregated constructs the clustering-variant mapping (also the base
// of the corridor variants, which add zone clustering on top — see
// corridor.go).
func BuildAggregated(pd *problemdata.ProblemData, params Params) (*AggregatedMapping, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	am := &AggregatedMapping{
		PD:     pd,
		Params: params,
		Omega:  make(map[int][]ODPair),
		Q:      make(map[int]map[ODPair]int),
	}

	allOD := make(map[ODPair]bool)

	for s := 1; s <= pd.ScenarioCount(); s++ {
		sc := pd.Scenario(s)
		am.Q[s] = make(map[ODPair]int)
		seen := make(map[ODPair]bool)
		for _, r := range sc.Requests {
			od := ODPair{OriginID: r.OriginID, DestinationID: r.DestinationID}
			allOD[od] = true
			am.Q[s][od]++
			if !seen[od] {
				seen[od] = true
				am.Omega[s] = append(am.Omega[s], od)
			}
		}
		sort.Slice(am.Omega[s], func(i, j int) bool {
			a, b := am.Omega[s][i], am.Omega[s][j]
			if a.OriginID != b.OriginID {
				return a.OriginID < b.OriginID
			}
			return a.DestinationID < b.DestinationID
		})
	}

	if params.HasWalkLimit {
		fp, err := BuildFeasiblePairs(pd, allOD, params.WalkingLimit)
		if err != nil {
			return nil, err
		}
		am.FeasiblePairs = fp
	}

	return am, nil
}
