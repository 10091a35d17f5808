package latency

// Entry pairs a key (typically an access) with its latency.
type Entry[K any] struct {
	Key     K
	Latency Latency
}

// GetLatest returns the Pareto-maximal subset of the entries: an entry is
// discarded iff some other entry has both a minimum and a maximum at least as
// large as its own.  Of several identical latencies only the first is kept.
// Incomparable entries are all retained.  The result preserves input order.
func GetLatest[K any](entries []Entry[K]) []Entry[K] {
	var latest []Entry[K]

	for i, e := range entries {
		dominated := false
		for j, o := range entries {
			if i == j || !o.Latency.Dominates(e.Latency) {
				continue
			}

			// among identical latencies the earliest entry wins
			if o.Latency == e.Latency && j > i {
				continue
			}

			dominated = true
			break
		}

		if !dominated {
			latest = append(latest, e)
		}
	}

	return latest
}
