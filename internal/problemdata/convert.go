package problemdata

// IndicesForIDs converts a slice of external station ids to their 1-based
// array indices, skipping any id the problem data does not know about.
// Adapted from the teacher's routing.Raptor.ConvertStopsToIDs, which did
// the same id->index conversion for stops pulled from a viewport query.
func (pd *ProblemData) IndicesForIDs(ids []int64) []StationIndex {
	out := make([]StationIndex, 0, len(ids))
	for _, id := range ids {
		if idx, ok := pd.idToIndex[id]; ok {
			out = append(out, idx)
		}
	}
	return out
}
