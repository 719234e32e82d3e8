package crdt

// Pn is the building block of the count-based types: two unsigned counters
// whose merge is pointwise max. Both fields only ever grow; Count is the
// signed difference.
type Pn struct {
	// P is the positive count.
	P uint64
	// N is the negative count.
	N uint64
}

// Count returns the current signed count.
func (pn Pn) Count() int64 {
	return int64(pn.P) - int64(pn.N)
}

// Increment adds amount to the positive count, or its magnitude to the
// negative count when amount is negative. Exceeding the uint64 range of
// either side is undefined behavior and is never checked.
func (pn *Pn) Increment(amount int64) {
	if amount >= 0 {
		pn.P += uint64(amount)
	} else {
		pn.N += uint64(-amount)
	}
}

// Merge merges another Pn into this one, taking the pointwise max.
func (pn *Pn) Merge(other Pn) {
	pn.P = max(pn.P, other.P)
	pn.N = max(pn.N, other.N)
}

// Compare places pn against other under pointwise dominance of (P, N).
func (pn Pn) Compare(other Pn) Ordering {
	switch {
	case pn == other:
		return Equal
	case pn.P <= other.P && pn.N <= other.N:
		return Less
	case pn.P >= other.P && pn.N >= other.N:
		return Greater
	default:
		return Concurrent
	}
}
