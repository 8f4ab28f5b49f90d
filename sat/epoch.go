package sat

// resetSet is a set of dense ids in [0, capacity) that can be cleared in
// O(1) using a monotonically increasing timestamp instead of zeroing the
// backing array. Grounded on yass's ResetSet (internal/sat/set.go);
// used here both for conflict analysis's "seen variable" set and, via
// epochStamp below, generalized to the three-state removable/poison
// marks clause minimization needs (§4.4, §9 "epoch-stamped scratch
// bitsets... the difference between O(1) and O(N) work per bump").
type resetSet struct {
	stampedAt []uint32
	epoch     uint32
}

func (s *resetSet) Contains(id int) bool {
	return s.stampedAt[id] == s.epoch
}

func (s *resetSet) Add(id int) {
	s.stampedAt[id] = s.epoch
}

func (s *resetSet) Clear() {
	s.epoch++
	if s.epoch == 0 { // overflow: fall back to a real zeroing pass
		s.epoch = 1
		for i := range s.stampedAt {
			s.stampedAt[i] = 0
		}
	}
}

func (s *resetSet) Grow(n int) {
	if s.epoch == 0 { // zeroed stamps must not read as members of epoch 0
		s.epoch = 1
	}
	for len(s.stampedAt) < n {
		s.stampedAt = append(s.stampedAt, 0)
	}
}

// stampState is the per-variable mark clause minimization's recursive
// DFS stamps with: unmarked (default), poison (resolving through this
// variable reached an unmarked, non-removable literal) or removable
// (every path from this variable leads to already-marked literals).
type stampState uint8

const (
	stampUnmarked stampState = iota
	stampRemovable
	stampPoison
)

// epochStamps is a resetSet generalized to carry a stampState instead of
// a boolean, using the same O(1)-clear epoch trick.
type epochStamps struct {
	stampedAt []uint32
	state     []stampState
	epoch     uint32
}

func (e *epochStamps) Grow(n int) {
	for len(e.stampedAt) < n {
		e.stampedAt = append(e.stampedAt, 0)
		e.state = append(e.state, stampUnmarked)
	}
}

func (e *epochStamps) Clear() {
	e.epoch++
	if e.epoch == 0 {
		e.epoch = 1
		for i := range e.stampedAt {
			e.stampedAt[i] = 0
		}
	}
}

func (e *epochStamps) Get(id int) stampState {
	if e.stampedAt[id] != e.epoch {
		return stampUnmarked
	}
	return e.state[id]
}

func (e *epochStamps) Set(id int, st stampState) {
	e.stampedAt[id] = e.epoch
	e.state[id] = st
}
