package chain

// extendedPool owns every extended chunk a table's chains may draw
// from. Allocation is trivial bump allocation plus a free-list reuse
// path — CHAIN itself needs no lock around this since the whole table
// is externally synchronized (or single-threaded); chainlock's own
// pool adds a single spinlock around the same bump/free-list logic.
//
// Handles are 1-based indices into chunks, never Go pointers: a table
// living in memory mapped across processes cannot contain a pointer
// valid only in one address space.
type extendedPool[K comparable, V any] struct {
	chunks   []extendedChunk[K, V]
	next     uint32 // bump cursor: chunks[0:next] have been touched at least once
	freeHead uint32 // 1-based index of the first free chunk, 0 = empty free list
}

func newExtendedPool[K comparable, V any](capacity uint32) extendedPool[K, V] {
	return extendedPool[K, V]{chunks: make([]extendedChunk[K, V], capacity)}
}

// alloc returns a 1-based handle to a zeroed extended chunk, or 0 if
// the pool is exhausted.
func (p *extendedPool[K, V]) alloc() uint32 {
	if p.freeHead != 0 {
		h := p.freeHead
		c := &p.chunks[h-1]
		p.freeHead = c.nextExtended
		*c = extendedChunk[K, V]{}
		return h
	}
	if int(p.next) >= len(p.chunks) {
		return 0
	}
	p.next++
	return p.next
}

// free returns a now-empty extended chunk to the free list.
func (p *extendedPool[K, V]) free(handle uint32) {
	c := &p.chunks[handle-1]
	*c = extendedChunk[K, V]{nextExtended: p.freeHead}
	p.freeHead = handle
}

func (p *extendedPool[K, V]) get(handle uint32) *extendedChunk[K, V] {
	return &p.chunks[handle-1]
}

func (p *extendedPool[K, V]) reset() {
	for i := range p.chunks {
		p.chunks[i] = extendedChunk[K, V]{}
	}
	p.next = 0
	p.freeHead = 0
}
