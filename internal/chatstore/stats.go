package chatstore

import "time"

// Stats is an on-demand aggregate view over the store. Nothing here is cached.
type Stats struct {
	Users       int
	Groups      int
	AliveGroups int
	DeadGroups  int

	// UserLanguages and GroupLanguages are normalized percentage breakdowns
	// of the message-locale histograms, split by chat kind.
	UserLanguages  map[string]float64
	GroupLanguages map[string]float64
}

// Stats computes the aggregate view at the given instant. A group whose last
// inbound message is older than aliveCutoff counts as dead.
func (s *Store) Stats(now time.Time, aliveCutoff time.Duration) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		UserLanguages:  make(map[string]float64),
		GroupLanguages: make(map[string]float64),
	}

	userCounts := make(map[string]int64)
	groupCounts := make(map[string]int64)
	var userTotal, groupTotal int64

	for _, c := range s.chats {
		if c.IsGroup() {
			st.Groups++
			if c.LastSeen.Add(aliveCutoff).After(now) {
				st.AliveGroups++
			} else {
				st.DeadGroups++
			}
			for locale, n := range c.Languages {
				groupCounts[locale] += n
				groupTotal += n
			}
		} else {
			st.Users++
			for locale, n := range c.Languages {
				userCounts[locale] += n
				userTotal += n
			}
		}
	}

	for locale, n := range userCounts {
		st.UserLanguages[locale] = 100 * float64(n) / float64(userTotal)
	}
	for locale, n := range groupCounts {
		st.GroupLanguages[locale] = 100 * float64(n) / float64(groupTotal)
	}

	return st
}
