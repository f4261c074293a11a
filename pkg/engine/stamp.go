package engine

// Stamp orders value production within and across rounds. Round advances once
// per external evaluation pass; Seq advances once per visited node within a
// round. Stamps express relative recency only; cache validity is decided by
// the round number alone.
type Stamp struct {
	Round uint64
	Seq   uint32
}

func (s Stamp) Before(other Stamp) bool {
	if s.Round != other.Round {
		return s.Round < other.Round
	}
	return s.Seq < other.Seq
}

func (s Stamp) After(other Stamp) bool {
	return other.Before(s)
}

// MaxStamp returns the later of the two stamps.
func MaxStamp(a, b Stamp) Stamp {
	if a.Before(b) {
		return b
	}
	return a
}

// Clock is the round counter plus the per-node sequence within the current
// round.
type Clock struct {
	round uint64
	seq   uint32
}

// BeginRound advances the round counter. Called exactly once per external
// evaluation pass.
func (c *Clock) BeginRound() {
	c.round++
	c.seq = 0
}

// Round returns the current round number.
func (c *Clock) Round() uint64 {
	return c.round
}

// NextStamp returns a strictly increasing stamp for the node being visited.
func (c *Clock) NextStamp() Stamp {
	s := Stamp{Round: c.round, Seq: c.seq}
	c.seq++
	return s
}

// Reset returns the clock to its initial state.
func (c *Clock) Reset() {
	c.round = 0
	c.seq = 0
}
