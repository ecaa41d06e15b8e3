// Package mapping builds the per-model index mappings of spec §4.2: the
// scenario/time/OD tables, feasible candidate-pair tables, and (for the
// corridor/transportation variants) zone clusters, corridors and anchors,
// that the model assembler consumes to build variable/constraint families.
//
// Each variant is a tagged sum type: Variant names which of has_time /
// has_pooling / has_clusters / has_anchors apply, per spec §9's "Polymorphism
// across model variants" design note. Implementations share the Base
// embedding (station/scenario bijections, which are just the ProblemData
// itself) rather than a deep class hierarchy.
package mapping

import "github.com/antigravity/stationselect/internal/problemdata"

// Variant discriminates the five model families.
type Variant int

const (
	VariantPooling Variant = iota
	VariantClustering
	VariantCorridorZ
	VariantCorridorX
	VariantTransportation
)

func (v Variant) String() string {
	switch v {
	case VariantPooling:
		return "pooling"
	case VariantClustering:
		return "clustering"
	case VariantCorridorZ:
		return "corridor-z"
	case VariantCorridorX:
		return "corridor-x"
	case VariantTransportation:
		return "transportation"
	default:
		return "unknown"
	}
}

// ODPair is an ordered pair of station ids identifying a request's
// endpoints (spec GLOSSARY).
type ODPair struct {
	OriginID      int64
	DestinationID int64
}

// PairIdx is the (pickup, drop-off) station-index pair an OD pair may be
// assigned to.
type PairIdx struct {
	Pickup  problemdata.StationIndex
	Dropoff problemdata.StationIndex
}

// Params bundles every tunable the index-mapping builders need. Validate
// rejects out-of-range K, L, TimeWindowSec, WalkingLimit and RoutingDelay
// with an InvalidParameterError, per spec §7's "parameter validation
// errors surface immediately from the constructor". The boolean fields are
// taken as given: a zero-value BuildExact selects the Σy≤L form and a
// zero-value HasWalkLimit turns walking limits off.
type Params struct {
	K             int     // per-scenario activation count
	L             int     // build count (or upper bound, see BuildExact)
	BuildExact    bool    // true: Σy=L (equality). false (the zero value): Σy≤L. Not checked by Validate.
	TimeWindowSec int     // pooling variant bucket width; unused otherwise
	WalkingLimit  float64 // walking limit W; read only when HasWalkLimit is true
	HasWalkLimit  bool    // false: no walking limit (dense mode)
	RoutingDelay  float64 // Δ, non-negative
	LooseLinking  bool    // false (default): tight two-constraint activation linking
}

// Validate checks the InvalidParameter conditions of spec §7.
func (p Params) Validate() error {
	if p.K < 1 {
		return &problemdata.InvalidParameterError{Param: "K", Reason: "must be >= 1"}
	}
	if p.L < p.K {
		return &problemdata.InvalidParameterError{Param: "L", Reason: "must be >= K"}
	}
	if p.TimeWindowSec < 0 {
		return &problemdata.InvalidParameterError{Param: "TimeWindowSec", Reason: "must be non-negative"}
	}
	if p.HasWalkLimit && p.WalkingLimit < 0 {
		return &problemdata.InvalidParameterError{Param: "WalkingLimit", Reason: "must be non-negative"}
	}
	if p.RoutingDelay < 0 {
		return &problemdata.InvalidParameterError{Param: "RoutingDelay", Reason: "must be non-negative"}
	}
	return nil
}
