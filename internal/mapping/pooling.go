package mapping

import (
	"sort"

	"github.com/antigravity/stationselect/internal/detour"
	"github.com/antigravity/stationselect/internal/problemdata"
)

// BucketKey identifies one (scenario, time-bucket) pair.
type BucketKey struct {
	Scenario int // 1-based model scenario index
	TimeID   int
}

// PoolingMapping is the time-bucketed OD + feasible-pair + detour mapping
// of spec §4.2 "Pooling variant".
type PoolingMapping struct {
	PD     *problemdata.ProblemData
	Params Params

	// Omega[s][t] is the ordered (deterministic) list of distinct OD pairs
	// occurring in that bucket. Empty buckets are absent from the map.
	Omega map[int]map[int][]ODPair
	// Q[s][t][od] is the request count for that pair in that bucket.
	Q map[int]map[int]map[ODPair]int

	// FeasiblePairs is nil when walking limits are off (dense mode).
	FeasiblePairs FeasiblePairs

	Detour *detour.Tables
	// FeasibleSameSource[bucket] lists indices into Detour.SameSource that
	// are feasible at that bucket.
	FeasibleSameSource map[BucketKey][]int
	// FeasibleSameDest[bucket] lists indices into Detour.SameDest that are
	// feasible at that bucket (the quadruple's "first" bucket, t; its
	// second leg lands at t+Δt).
	FeasibleSameDest map[BucketKey][]int
}

// BuildPooling constructs the pooling-variant mapping.
func BuildPooling(pd *problemdata.ProblemData, detourTables *detour.Tables, params Params) (*PoolingMapping, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.TimeWindowSec <= 0 {
		return nil, &problemdata.InvalidParameterError{Param: "TimeWindowSec", Reason: "must be positive for the pooling variant"}
	}

	pm := &PoolingMapping{
		PD:                 pd,
		Params:             params,
		Omega:              make(map[int]map[int][]ODPair),
		Q:                  make(map[int]map[int]map[ODPair]int),
		Detour:             detourTables,
		FeasibleSameSource: make(map[BucketKey][]int),
		FeasibleSameDest:   make(map[BucketKey][]int),
	}

	allOD := make(map[ODPair]bool)

	for s := 1; s <= pd.ScenarioCount(); s++ {
		sc := pd.Scenario(s)
		if !sc.HasWindow {
			return nil, &problemdata.ScenarioStartRequiredError{ScenarioLabel: sc.Label}
		}
		pm.Omega[s] = make(map[int][]ODPair)
		pm.Q[s] = make(map[int]map[ODPair]int)

		seen := make(map[int]map[ODPair]bool)
		for _, r := range sc.Requests {
			t := int(r.RequestTime.Sub(sc.Start).Seconds()) / params.TimeWindowSec
			od := ODPair{OriginID: r.OriginID, DestinationID: r.DestinationID}
			allOD[od] = true

			if pm.Q[s][t] == nil {
				pm.Q[s][t] = make(map[ODPair]int)
				seen[t] = make(map[ODPair]bool)
			}
			pm.Q[s][t][od]++
			if !seen[t][od] {
				seen[t][od] = true
				pm.Omega[s][t] = append(pm.Omega[s][t], od)
			}
		}
		for t := range pm.Omega[s] {
			sort.Slice(pm.Omega[s][t], func(i, j int) bool {
				a, b := pm.Omega[s][t][i], pm.Omega[s][t][j]
				if a.OriginID != b.OriginID {
					return a.OriginID < b.OriginID
				}
				return a.DestinationID < b.DestinationID
			})
		}
	}

	if params.HasWalkLimit {
		fp, err := BuildFeasiblePairs(pd, allOD, params.WalkingLimit)
		if err != nil {
			return nil, err
		}
		pm.FeasiblePairs = fp
	}

	if detourTables != nil {
		pm.computeDetourFeasibility()
	}

	return pm, nil
}

// achievableEdges returns the set of (j,k) station-index pairs reachable by
// at least one OD pair's feasible-pair list in bucket (s,t). When walking
// limits are off every station-index pair is trivially achievable and this
// is never consulted (see isSameSourceFeasible/isSameDestFeasible).
func (pm *PoolingMapping) achievableEdges(s, t int) map[PairIdx]bool {
	edges := make(map[PairIdx]bool)
	for _, od := range pm.Omega[s][t] {
		for _, pair := range pm.FeasiblePairs[od] {
			edges[pair] = true
		}
	}
	return edges
}

func (pm *PoolingMapping) computeDetourFeasibility() {
	for s, byTime := range pm.Omega {
		for t := range byTime {
			bucket := BucketKey{Scenario: s, TimeID: t}

			if len(pm.Omega[s][t]) < 2 {
				continue
			}

			var edges map[PairIdx]bool
			if pm.Params.HasWalkLimit {
				edges = pm.achievableEdges(s, t)
			}

			for i, triple := range pm.Detour.SameSource {
				if pm.Params.HasWalkLimit {
					if !edges[PairIdx{Pickup: triple.J, Dropoff: triple.K}] || !edges[PairIdx{Pickup: triple.J, Dropoff: triple.L}] {
						continue
					}
				}
				pm.FeasibleSameSource[bucket] = append(pm.FeasibleSameSource[bucket], i)
			}

			for i, quad := range pm.Detour.SameDest {
				t2 := t + quad.DeltaT
				if _, ok := pm.Omega[s][t2]; !ok {
					continue
				}
				if pm.Params.HasWalkLimit {
					if !edges[PairIdx{Pickup: quad.J, Dropoff: quad.L}] {
						continue
					}
					edges2 := pm.achievableEdges(s, t2)
					if !edges2[PairIdx{Pickup: quad.K, Dropoff: quad.L}] {
						continue
					}
				}
				pm.FeasibleSameDest[bucket] = append(pm.FeasibleSameDest[bucket], i)
			}
		}
	}
}

// Buckets returns every (scenario, time-bucket) key with at least one OD
// pair, sorted for deterministic iteration.
func (pm *PoolingMapping) Buckets() []BucketKey {
	var out []BucketKey
	for s, byTime := range pm.Omega {
		for t := range byTime {
			out = append(out, BucketKey{Scenario: s, TimeID: t})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scenario != out[j].Scenario {
			return out[i].Scenario < out[j].Scenario
		}
		return out[i].TimeID < out[j].TimeID
	})
	return out
}
