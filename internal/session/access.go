package session

// DefaultFreeThreshold is how many questions an unenrolled learner may reach.
const DefaultFreeThreshold = 10

// AccessPolicy decides which ordinals a learner may interact with. Answer
// entry, next/previous and navigator jumps all go through Reachable.
type AccessPolicy struct {
	Enrolled      bool
	FreeThreshold int
}

func (p AccessPolicy) Reachable(ordinal int) bool {
	if ordinal < 1 {
		return false
	}
	return p.Enrolled || ordinal <= p.FreeThreshold
}

// Ceiling is the highest reachable ordinal among total questions, 0 when
// none are reachable.
func (p AccessPolicy) Ceiling(total int) int {
	n := 0
	for n < total && p.Reachable(n+1) {
		n++
	}
	return n
}
