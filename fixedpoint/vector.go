// Package fixedpoint implements the family of least/greatest fixed-point
// solvers that compute, per state, the minimum initial resource level
// sufficient to guarantee each of the four qualitative objectives
// (Safety, Positive Reachability, Almost-Sure Reachability, Almost-Sure
// Büchi) on a ConsMDP with bounded capacity.
package fixedpoint

import (
	"math"

	"github.com/rfielding/conslevel/consmdp"
)

// Level is a resource level, or the sentinel Inf meaning "no finite
// initial resource suffices."
type Level int

// Inf represents an unreachable/unsafe requirement. It is deliberately
// far larger than any capacity the API accepts (capacity <= 2^31-1) so
// that Level arithmetic (adding a consumption to it) can never wrap
// around into a small, misleadingly-finite number.
const Inf Level = math.MaxInt32 * 4

// Vector is a per-state resource-level assignment.
type Vector []Level

// NewVector returns a vector of n states, all initialised to fill.
func NewVector(n int, fill Level) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = fill
	}
	return v
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Get returns v[s]. An out-of-range s is a programmer error and panics.
func (v Vector) Get(s consmdp.StateID) Level {
	return v[s]
}

// Truncate maps l to Inf whenever it exceeds capacity, per the "a value
// above capacity is treated as infinity" rule.
func Truncate(l Level, capacity int) Level {
	if l == Inf || l > Level(capacity) {
		return Inf
	}
	return l
}

// AddTruncate adds a and b (either of which may be Inf) and truncates the
// result at capacity.
func AddTruncate(a, b Level, capacity int) Level {
	if a == Inf || b == Inf {
		return Inf
	}
	return Truncate(a+b, capacity)
}
