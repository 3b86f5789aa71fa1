package htcore

// VisitDecision is the outcome a caller-supplied visitor returns from
// Iterate/Sweep for each live slot it is shown.
type VisitDecision int

const (
	// Keep leaves the slot untouched.
	Keep VisitDecision = iota
	// Remove clears the slot's valid bit (and, for CHAIN, may return
	// an emptied extended chunk to the pool).
	Remove
)

// Visitor is the callback shape passed to Iterate. It receives the key
// by value and the value by pointer so it may mutate in place under
// whatever lock the caller's variant holds during iteration.
type Visitor[K comparable, V any] func(key K, value *V) VisitDecision
