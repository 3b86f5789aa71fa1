// Package htcore holds the infrastructure shared by every table variant:
// the result vocabulary, atomic statistics, cache-line sizing, iteration
// types, and the pluggable Hasher contract.
package htcore

import "errors"

// ErrDuplicate is returned by a strict Insert when the key is already
// present. Callers who want upsert semantics use InsertOrUpdate instead
// (MOD-LOCK) or fall back to Lookup.
var ErrDuplicate = errors.New("hashtable: key already present")

// ErrFull is returned when the target chunk (and, for CHAIN variants,
// its overflow chain and the extended-chunk pool) has no room left. It
// is the signal that the caller's sizing assumptions were wrong; the
// core never resizes or evicts to recover from it.
var ErrFull = errors.New("hashtable: chunk full")

// ErrNotFound names the not-found outcome. No operation in this module
// returns it: Lookup and Remove report absence with a bool instead of
// an error to keep the hot path allocation-free.
var ErrNotFound = errors.New("hashtable: key not found")
