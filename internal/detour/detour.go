// Package detour enumerates the same-source and same-destination pooling
// triples/quadruples (spec §4.3), once per problem, independent of
// scenario. No search state is carried across a triple; each is judged
// independently, the way the teacher's raptor.go processes one round at a
// time with no backtracking.
package detour

import (
	"go.uber.org/zap"

	"github.com/antigravity/stationselect/internal/problemdata"
)

// SameSourceTriple is (j, k, l): a shared vehicle travels j -> k -> l; a
// j->l passenger tolerates the detour through k, where a k->l passenger is
// also carried.
type SameSourceTriple struct {
	J, K, L problemdata.StationIndex
}

// SameDestQuadruple is (j, k, l, Δt): a j->l passenger is picked up first;
// the vehicle detours through k to collect a k->l passenger whose request
// arrives Δt buckets later.
type SameDestQuadruple struct {
	J, K, L problemdata.StationIndex
	DeltaT  int
}

// Tables holds both enumerations plus a lookup index from (j,k,l) to a
// SameSourceTriple's position, used by the mapping builders to test
// feasibility per bucket without re-scanning.
type Tables struct {
	SameSource   []SameSourceTriple
	SameDest     []SameDestQuadruple
	sourceIndex  map[[3]problemdata.StationIndex]int
	destIndex    map[[3]problemdata.StationIndex]int // keyed by (j,k,l); value indexes into SameDest's first match
}

// IndexOfSameSource returns the position of triple (j,k,l) in SameSource,
// or -1 if it was never admitted.
func (t *Tables) IndexOfSameSource(j, k, l problemdata.StationIndex) int {
	if i, ok := t.sourceIndex[[3]problemdata.StationIndex{j, k, l}]; ok {
		return i
	}
	return -1
}

// Build enumerates every ordered station triple (a,b,c) with distinct ids
// and admits same-source/same-destination candidates per spec §4.3.
//
// R = routing cost, Δ = routingDelay (non-negative), timeWindowSec is the
// pooling variant's bucket width (used only to compute Δt for the
// same-destination quadruple). With timeWindowSec <= 0 only same-source
// triples are built and SameDest stays empty.
func Build(pd *problemdata.ProblemData, routingDelay float64, timeWindowSec int, logger *zap.SugaredLogger) (*Tables, error) {
	t := &Tables{
		sourceIndex: make(map[[3]problemdata.StationIndex]int),
		destIndex:   make(map[[3]problemdata.StationIndex]int),
	}
	seenUnordered := make(map[[3]problemdata.StationIndex]bool)

	indices := pd.AllStationIndices()
	n := len(indices)

	for ai := 0; ai < n; ai++ {
		for bi := 0; bi < n; bi++ {
			if bi == ai {
				continue
			}
			for ci := 0; ci < n; ci++ {
				if ci == ai || ci == bi {
					continue
				}
				a, b, c := indices[ai], indices[bi], indices[ci]

				rab, err := pd.RoutingCostByIndex(a, b)
				if err != nil {
					return nil, err
				}
				rbc, err := pd.RoutingCostByIndex(b, c)
				if err != nil {
					return nil, err
				}
				rac, err := pd.RoutingCostByIndex(a, c)
				if err != nil {
					return nil, err
				}

				if rab+rbc < rac {
					if logger != nil {
						logger.Warnw("routing cost triangle-inequality violation; skipping triple",
							"a", pd.StationID(a), "b", pd.StationID(b), "c", pd.StationID(c),
							"r_ab", rab, "r_bc", rbc, "r_ac", rac)
					}
					continue
				}

				if rac < rab || rac < rbc {
					continue // (a,c) must be the longest edge
				}
				if rab+rbc > rac+routingDelay {
					continue
				}

				lo, hi := a, c
				if lo > hi {
					lo, hi = hi, lo
				}
				unordered := [3]problemdata.StationIndex{lo, b, hi}
				if seenUnordered[unordered] {
					continue // same unordered triple already admitted via the inverse ordering
				}
				seenUnordered[unordered] = true

				key := [3]problemdata.StationIndex{a, b, c}
				t.sourceIndex[key] = len(t.SameSource)
				t.SameSource = append(t.SameSource, SameSourceTriple{J: a, K: b, L: c})

				if timeWindowSec > 0 {
					deltaT := int(rab) / timeWindowSec
					t.destIndex[key] = len(t.SameDest)
					t.SameDest = append(t.SameDest, SameDestQuadruple{J: a, K: b, L: c, DeltaT: deltaT})
				}
			}
		}
	}

	return t, nil
}
