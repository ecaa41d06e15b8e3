package mapping_test

import (
	"testing"

	"github.com/antigravity/stationselect/internal/mapping"
	"github.com/antigravity/stationselect/internal/zonecluster"
)

func TestCorridorMapping_CorridorIndexIsRowMajor(t *testing.T) {
	cm := &mapping.CorridorMapping{
		Clustering: &zonecluster.Clustering{
			Clusters: []zonecluster.Cluster{{Label: 1}, {Label: 2}, {Label: 3}},
		},
	}

	cases := []struct {
		a, b, want int
	}{
		{1, 1, 0},
		{1, 3, 2},
		{2, 1, 3},
		{3, 3, 8},
	}
	for _, tc := range cases {
		if got := cm.CorridorIndex(tc.a, tc.b); got != tc.want {
			t.Errorf("CorridorIndex(%d,%d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
