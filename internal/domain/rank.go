package domain

import "sort"

// DefaultTopN is the number of states shown in the comparative charts.
const DefaultTopN = 10

// TopN returns the n states with the most confirmed cases, highest first.
// Ties keep fetch order; fewer than n rows returns them all. s is not modified.
func TopN(s Snapshot, n int) Snapshot {
	if n <= 0 {
		return Snapshot{}
	}
	records := s.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Confirmed > records[j].Confirmed
	})
	if len(records) > n {
		records = records[:n]
	}
	return Snapshot{records: records}
}
