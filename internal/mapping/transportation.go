package mapping

import (
	"sort"

	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/zonecluster"
)

// AnchorKey is an ordered zone-pair (spec GLOSSARY "Anchor").
type AnchorKey struct {
	A, B int
}

// IDCount pairs a station id with a demand count, used for the anchor's
// per-id pickup/drop-off lists.
type IDCount struct {
	ID    int64
	Count int
}

// AnchorScenarioDemand is one anchor's demand in one scenario.
type AnchorScenarioDemand struct {
	Pickups  []IDCount // sorted ascending by ID
	Dropoffs []IDCount // sorted ascending by ID
	TripCount int      // M_{g,s}
}

// Anchor is an active zone-pair plus its allowed (pickup, drop-off)
// station-index pairs and per-scenario demand.
type Anchor struct {
	Key      AnchorKey
	Pairs    []PairIdx // P(g): all (j in C_a, k in C_b)
	Demand   map[int]AnchorScenarioDemand // keyed by 1-based scenario index
}

// TransportationMapping is the zone-clustering + anchor mapping of spec
// §4.2 "Transportation variant".
type TransportationMapping struct {
	PD         *problemdata.ProblemData
	Clustering *zonecluster.Clustering
	Anchors    []Anchor // sorted lexicographically by (A,B)
}

// BuildTransportation assigns every request to the anchor of its
// (cluster(origin), cluster(destination)) pair, emitting only anchors with
// at least one trip in at least one scenario, sorted for determinism
// (spec §4.2 invariant (iii)).
func BuildTransportation(pd *problemdata.ProblemData, clusterParams zonecluster.Params) (*TransportationMapping, error) {
	clustering, err := zonecluster.Build(pd, clusterParams)
	if err != nil {
		return nil, err
	}

	members := make(map[int][]problemdata.StationIndex)
	for _, c := range clustering.Clusters {
		members[c.Label] = c.Members
	}

	type accumKey struct {
		anchor   AnchorKey
		scenario int
	}
	pickupCounts := make(map[accumKey]map[int64]int)
	dropoffCounts := make(map[accumKey]map[int64]int)
	tripCounts := make(map[accumKey]int)
	seenAnchors := make(map[AnchorKey]bool)

	for s := 1; s <= pd.ScenarioCount(); s++ {
		sc := pd.Scenario(s)
		for _, r := range sc.Requests {
			originIdx, ok := pd.StationIndexOf(r.OriginID)
			if !ok {
				continue
			}
			destIdx, ok := pd.StationIndexOf(r.DestinationID)
			if !ok {
				continue
			}
			key := AnchorKey{A: clustering.LabelOf(originIdx), B: clustering.LabelOf(destIdx)}
			seenAnchors[key] = true
			ak := accumKey{anchor: key, scenario: s}

			if pickupCounts[ak] == nil {
				pickupCounts[ak] = make(map[int64]int)
				dropoffCounts[ak] = make(map[int64]int)
			}
			pickupCounts[ak][r.OriginID]++
			dropoffCounts[ak][r.DestinationID]++
			tripCounts[ak]++
		}
	}

	var anchorKeys []AnchorKey
	for k := range seenAnchors {
		anchorKeys = append(anchorKeys, k)
	}
	sort.Slice(anchorKeys, func(i, j int) bool {
		if anchorKeys[i].A != anchorKeys[j].A {
			return anchorKeys[i].A < anchorKeys[j].A
		}
		return anchorKeys[i].B < anchorKeys[j].B
	})

	tm := &TransportationMapping{PD: pd, Clustering: clustering}

	for _, key := range anchorKeys {
		anchor := Anchor{Key: key, Demand: make(map[int]AnchorScenarioDemand)}

		for _, j := range members[key.A] {
			for _, k := range members[key.B] {
				anchor.Pairs = append(anchor.Pairs, PairIdx{Pickup: j, Dropoff: k})
			}
		}

		for s := 1; s <= pd.ScenarioCount(); s++ {
			ak := accumKey{anchor: key, scenario: s}
			trips, ok := tripCounts[ak]
			if !ok {
				continue
			}
			demand := AnchorScenarioDemand{TripCount: trips}
			for id, cnt := range pickupCounts[ak] {
				demand.Pickups = append(demand.Pickups, IDCount{ID: id, Count: cnt})
			}
			for id, cnt := range dropoffCounts[ak] {
				demand.Dropoffs = append(demand.Dropoffs, IDCount{ID: id, Count: cnt})
			}
			sort.Slice(demand.Pickups, func(i, j int) bool { return demand.Pickups[i].ID < demand.Pickups[j].ID })
			sort.Slice(demand.Dropoffs, func(i, j int) bool { return demand.Dropoffs[i].ID < demand.Dropoffs[j].ID })
			anchor.Demand[s] = demand
		}

		tm.Anchors = append(tm.Anchors, anchor)
	}

	return tm, nil
}
