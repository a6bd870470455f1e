package records

import "time"

// SearchTests returns the records matching every filter set in q, most
// recently updated first.
func (s *Store) SearchTests(q Query) []*TestRecord {
	var out []*TestRecord
	for _, t := range s.Load().Tests {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	sortByUpdated(out)
	return out
}

// Matches reports whether t satisfies every filter in q.
func (q Query) Matches(t *TestRecord) bool {
	h := t.HeaderData
	checks := []struct{ want, got string }{
		{q.System, h.System},
		{q.TestType, h.TestType},
		{q.TestTypeValue, h.TestTypeValue},
		{q.TestCycle, h.TestCycle},
		{q.TestCase, h.TestCase},
		{string(q.Status), string(t.Status)},
	}
	for _, c := range checks {
		if c.want != "" && c.want != c.got {
			return false
		}
	}

	if q.StartDate != nil && t.UpdatedAt.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && t.CreatedAt.After(*q.EndDate) {
		return false
	}
	return true
}

// EndOfDay returns the last instant of t's calendar day, for inclusive
// date-only upper bounds.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
