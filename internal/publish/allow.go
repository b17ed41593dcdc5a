package publish

// AllowSet is the set of operator ids permitted to compose and publish.
// An empty set allows everyone; an unknown sender (id 0) is always denied.
type AllowSet map[int64]struct{}

// NewAllowSet builds an allow-set from a list of operator ids.
func NewAllowSet(ids []int64) AllowSet {
	s := make(AllowSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Allows reports whether the given operator may act.
func (a AllowSet) Allows(id int64) bool {
	if id == 0 {
		return false
	}
	if len(a) == 0 {
		return true
	}
	_, ok := a[id]
	return ok
}
