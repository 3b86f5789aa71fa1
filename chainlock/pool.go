package chainlock

import "github.com/yanet-dataplane/hashtable/htcore/spinlock"

// extendedPool is shared by every primary chunk's chain. Its bump
// cursor and free list are the only state any two chunks' inserts can
// contend on simultaneously, so a single pool-wide spinlock (not one
// per chunk) protects exactly that bookkeeping — the same
// arena-plus-freelist shape as package chain's pool, adapted here for
// concurrent callers.
type extendedPool[K comparable, V any] struct {
	lock     spinlock.Lock
	chunks   []extendedChunk[K, V]
	next     uint32
	freeHead uint32
}

func newExtendedPool[K comparable, V any](capacity uint32) extendedPool[K, V] {
	return extendedPool[K, V]{chunks: make([]extendedChunk[K, V], capacity)}
}

// alloc takes the pool lock, allocates a handle, and releases it. The
// caller must already hold the owning primary chunk's lock — pool lock
// nests inside chunk lock, never the other way around.
func (p *extendedPool[K, V]) alloc() uint32 {
	p.lock.Acquire()
	defer p.lock.Release()
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

func (p *extendedPool[K, V]) free(handle uint32) {
	p.lock.Acquire()
	defer p.lock.Release()
	c := &p.chunks[handle-1]
	*c = extendedChunk[K, V]{nextExtended: p.freeHead}
	p.freeHead = handle
}

// get is not protected by the pool lock: a chunk's chain is only ever
// walked and mutated by whichever goroutine holds that chunk's own
// lock, so reads and writes to an already-allocated chunk's contents
// never race with another goroutine's alloc/free bookkeeping.
func (p *extendedPool[K, V]) get(handle uint32) *extendedChunk[K, V] {
	return &p.chunks[handle-1]
}

func (p *extendedPool[K, V]) reset() {
	p.lock.Acquire()
	defer p.lock.Release()
	for i := range p.chunks {
		p.chunks[i] = extendedChunk[K, V]{}
	}
	p.next = 0
	p.freeHead = 0
}
