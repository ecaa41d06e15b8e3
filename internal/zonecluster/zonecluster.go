// Package zonecluster implements the exact k-medoid clustering MILP of
// spec §4.4: station indices are partitioned into zones either under a
// diameter bound or a target cluster count, by solving a small MILP
// through the same external solver the main models use.
//
// Grounded on other_examples/..nextmv-io-farmshare..main.go.go for the
// mip.NewModel/model.NewMultiMap/m.NewConstraint construction shape.
package zonecluster

import (
	"sort"

	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/antigravity/stationselect/internal/problemdata"
	"github.com/antigravity/stationselect/internal/solverx"
)

// Cluster is a partition cell: a medoid station index, its member set, and
// its label (1..C).
type Cluster struct {
	Label   int
	Medoid  problemdata.StationIndex
	Members []problemdata.StationIndex
}

// Clustering is the full partition plus a reverse label lookup.
type Clustering struct {
	Clusters []Cluster
	labelOf  map[problemdata.StationIndex]int
}

// LabelOf returns the zone label (1..C) a station index was assigned to.
func (c *Clustering) LabelOf(idx problemdata.StationIndex) int { return c.labelOf[idx] }

// Params selects exactly one clustering mode. Exactly one of Diameter or
// Count must be set; both set is InvalidParameterError (spec §7,
// "simultaneous cluster-diameter and cluster-count specification").
type Params struct {
	Diameter    *float64
	Count       *int
	SolveOptions solverx.Options
}

func (p Params) validate() error {
	if p.Diameter != nil && p.Count != nil {
		return &problemdata.InvalidParameterError{Param: "Diameter/Count", Reason: "cannot specify both a diameter bound and a target cluster count"}
	}
	if p.Diameter == nil && p.Count == nil {
		return &problemdata.InvalidParameterError{Param: "Diameter/Count", Reason: "exactly one of Diameter or Count must be set"}
	}
	if p.Count != nil && *p.Count < 1 {
		return &problemdata.InvalidParameterError{Param: "Count", Reason: "must be >= 1"}
	}
	if p.Diameter != nil && *p.Diameter < 0 {
		return &problemdata.InvalidParameterError{Param: "Diameter", Reason: "must be non-negative"}
	}
	return nil
}

type assignPair struct {
	I, J problemdata.StationIndex
}

// Build runs the k-medoid MILP against pd's routing cost matrix.
func Build(pd *problemdata.ProblemData, params Params) (*Clustering, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	indices := pd.AllStationIndices()
	n := len(indices)

	m := mip.NewModel()

	medoidVars := model.NewMultiMap(
		func(...problemdata.StationIndex) mip.Bool { return m.NewBool() },
		indices,
	)

	pairs := make([]assignPair, 0, n*n)
	for _, i := range indices {
		for _, j := range indices {
			pairs = append(pairs, assignPair{I: i, J: j})
		}
	}
	assignVars := model.NewMultiMap(
		func(...assignPair) mip.Bool { return m.NewBool() },
		pairs,
	)

	// Σ_j x_ij = 1 ∀i
	for _, i := range indices {
		c := m.NewConstraint(mip.Equal, 1.0)
		for _, j := range indices {
			c.NewTerm(1.0, assignVars.Get(assignPair{I: i, J: j}))
		}
	}

	// x_ij <= m_j ∀i,j ; x_jj >= m_j ∀j
	for _, i := range indices {
		for _, j := range indices {
			c := m.NewConstraint(mip.LessThanOrEqual, 0.0)
			c.NewTerm(1.0, assignVars.Get(assignPair{I: i, J: j}))
			c.NewTerm(-1.0, medoidVars.Get(j))
		}
	}
	for _, j := range indices {
		c := m.NewConstraint(mip.GreaterThanOrEqual, 0.0)
		c.NewTerm(1.0, assignVars.Get(assignPair{I: j, J: j}))
		c.NewTerm(-1.0, medoidVars.Get(j))
	}

	m.Objective().SetMinimize()

	if params.Diameter != nil {
		d := *params.Diameter
		for ii := 0; ii < n; ii++ {
			for jj := ii + 1; jj < n; jj++ {
				i1, i2 := indices[ii], indices[jj]
				r, err := pd.RoutingCostByIndex(i1, i2)
				if err != nil {
					return nil, err
				}
				if r <= d {
					continue
				}
				for _, j := range indices {
					c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
					c.NewTerm(1.0, assignVars.Get(assignPair{I: i1, J: j}))
					c.NewTerm(1.0, assignVars.Get(assignPair{I: i2, J: j}))
				}
			}
		}
		for _, j := range indices {
			m.Objective().NewTerm(1.0, medoidVars.Get(j))
		}
	} else {
		count := *params.Count
		cc := m.NewConstraint(mip.Equal, float64(count))
		for _, j := range indices {
			cc.NewTerm(1.0, medoidVars.Get(j))
		}
		for _, i := range indices {
			for _, j := range indices {
				r, err := pd.RoutingCostByIndex(i, j)
				if err != nil {
					return nil, err
				}
				m.Objective().NewTerm(r, assignVars.Get(assignPair{I: i, J: j}))
			}
		}
	}

	result, err := solverx.Solve(m, params.SolveOptions)
	if err != nil {
		return nil, err
	}
	if !result.HasValues {
		return nil, &solverx.SolverError{Status: result.Status}
	}

	var medoids []problemdata.StationIndex
	for _, j := range indices {
		if result.Solution.Value(medoidVars.Get(j)) > 0.5 {
			medoids = append(medoids, j)
		}
	}
	sort.Slice(medoids, func(a, b int) bool { return medoids[a] < medoids[b] })

	clustering := &Clustering{labelOf: make(map[problemdata.StationIndex]int, n)}
	medoidLabel := make(map[problemdata.StationIndex]int, len(medoids))
	for label, medoid := range medoids {
		medoidLabel[medoid] = label + 1
		clustering.Clusters = append(clustering.Clusters, Cluster{Label: label + 1, Medoid: medoid})
	}

	for _, i := range indices {
		var assignedMedoid problemdata.StationIndex
		for _, j := range medoids {
			if result.Solution.Value(assignVars.Get(assignPair{I: i, J: j})) > 0.5 {
				assignedMedoid = j
				break
			}
		}
		label := medoidLabel[assignedMedoid]
		clustering.labelOf[i] = label
		ci := label - 1
		clustering.Clusters[ci].Members = append(clustering.Clusters[ci].Members, i)
	}

	for ci := range clustering.Clusters {
		sort.Slice(clustering.Clusters[ci].Members, func(a, b int) bool {
			return clustering.Clusters[ci].Members[a] < clustering.Clusters[ci].Members[b]
		})
	}

	return clustering, nil
}
