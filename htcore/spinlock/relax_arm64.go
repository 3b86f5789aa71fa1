// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - ARM64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: ARM64 Spin-Wait Optimization
//
// Emits the YIELD instruction inside spinlock busy-wait loops.
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build arm64 && !noasm && !nocgo

package spinlock

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// cpuRelax emits the ARM64 YIELD instruction.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {
	C.cpu_yield()
}
