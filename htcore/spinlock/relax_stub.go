// relax_stub.go — fallback no-op for cpuRelax on platforms without a
// dedicated spin-wait hint instruction, or when cgo/asm is disabled.
//
//go:build (!amd64 && !arm64) || noasm || nocgo

package spinlock

//go:nosplit
//go:inline
func cpuRelax() {}
