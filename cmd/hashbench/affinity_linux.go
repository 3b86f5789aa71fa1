//go:build linux

package main

import (
	"golang.org/x/sys/unix"
)

// pinCurrentThread pins the calling OS thread to cpu through x/sys's
// wrapper around the SYS_SCHED_SETAFFINITY syscall — off the hot path,
// there is no reason not to let x/sys marshal the CPU set for us.
func pinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
