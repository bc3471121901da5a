package monitor

import "sort"

// ActiveSet is the collection of servers that completed bootstrap and have
// not failed since. Members are kept in ascending id order. After bootstrap
// the set only shrinks.
type ActiveSet struct {
	members []Conn
	sealed  bool
}

// add inserts a bootstrapped connection. It reports false once the set is
// sealed or when the id is already present.
func (a *ActiveSet) add(c Conn) bool {
	if a.sealed || a.Contains(c.ID()) {
		return false
	}
	i := sort.Search(len(a.members), func(i int) bool { return a.members[i].ID() >= c.ID() })
	a.members = append(a.members, nil)
	copy(a.members[i+1:], a.members[i:])
	a.members[i] = c
	return true
}

// seal ends bootstrap; no further members can be added.
func (a *ActiveSet) seal() {
	a.sealed = true
}

// Remove drops the member with the given id and returns it, or nil when absent.
func (a *ActiveSet) Remove(id int) Conn {
	for i, m := range a.members {
		if m.ID() == id {
			a.members = append(a.members[:i], a.members[i+1:]...)
			return m
		}
	}
	return nil
}

// Contains reports whether id is a member.
func (a *ActiveSet) Contains(id int) bool {
	for _, m := range a.members {
		if m.ID() == id {
			return true
		}
	}
	return false
}

// Snapshot returns the current members. Removing from the set does not
// affect a snapshot already taken.
func (a *ActiveSet) Snapshot() []Conn {
	out := make([]Conn, len(a.members))
	copy(out, a.members)
	return out
}

// IDs returns the member ids in ascending order.
func (a *ActiveSet) IDs() []int {
	ids := make([]int, len(a.members))
	for i, m := range a.members {
		ids[i] = m.ID()
	}
	return ids
}

// Len returns the number of members.
func (a *ActiveSet) Len() int {
	return len(a.members)
}
