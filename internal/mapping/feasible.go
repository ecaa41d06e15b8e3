package mapping

import "github.com/antigravity/stationselect/internal/problemdata"

// FeasiblePairs maps an OD pair to the allowed (pickup, drop-off) index
// pairs under a walking-distance limit W (spec §4.2, "Feasible
// candidate-pair table"). Computed once per build and reused to sparsify
// every subsequent indexed family.
type FeasiblePairs map[ODPair][]PairIdx

// BuildFeasiblePairs computes, for every od in ods, the cross-product of
// origin-feasible and destination-feasible station indices:
//
//	{(j,k) : walking(o, id(j)) <= W  AND  walking(id(k), d) <= W}
func BuildFeasiblePairs(pd *problemdata.ProblemData, ods map[ODPair]bool, walkingLimit float64) (FeasiblePairs, error) {
	out := make(FeasiblePairs, len(ods))
	indices := pd.AllStationIndices()

	for od := range ods {
		var originOK, destOK []problemdata.StationIndex
		for _, j := range indices {
			w, err := pd.WalkingCost(od.OriginID, pd.StationID(j))
			if err != nil {
				return nil, err
			}
			if w <= walkingLimit {
				originOK = append(originOK, j)
			}
		}
		for _, k := range indices {
			w, err := pd.WalkingCost(pd.StationID(k), od.DestinationID)
			if err != nil {
				return nil, err
			}
			if w <= walkingLimit {
				destOK = append(destOK, k)
			}
		}
		pairs := make([]PairIdx, 0, len(originOK)*len(destOK))
		for _, j := range originOK {
			for _, k := range destOK {
				pairs = append(pairs, PairIdx{Pickup: j, Dropoff: k})
			}
		}
		out[od] = pairs
	}
	return out, nil
}

// PairsForOD returns the (pickup, drop-off) candidates a given OD pair may
// be assigned to: the sparse feasible-pair list when feasiblePairs is
// non-nil, or the dense cross-product of every station index otherwise
// (spec §9, "Dense-vs-sparse assignment variables" — both code paths are
// driven from this single helper, selected by whether a walking limit was
// configured).
func PairsForOD(pd *problemdata.ProblemData, od ODPair, feasiblePairs FeasiblePairs) []PairIdx {
	if feasiblePairs != nil {
		return feasiblePairs[od]
	}
	indices := pd.AllStationIndices()
	pairs := make([]PairIdx, 0, len(indices)*len(indices))
	for _, j := range indices {
		for _, k := range indices {
			pairs = append(pairs, PairIdx{Pickup: j, Dropoff: k})
		}
	}
	return pairs
}
