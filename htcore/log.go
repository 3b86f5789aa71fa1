package htcore

import "log"

// DropError is the allocation-free diagnostic logger used on every
// non-hot path in this module (setup, configuration errors, GC/sweep
// hooks, defect backstops). Hot-path code never calls this — packet
// processing has no budget for even the nil-check branch here.
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		log.Printf("%s: %v", prefix, err)
	} else {
		log.Print(prefix)
	}
}
