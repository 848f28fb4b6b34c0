package physics

// pool is a fixed-size-class freelist allocator over a slice: the arena
// the rest of the engine builds its index-based handles on top of. Freed
// slots re-enter a per-class free list and capacity grows 1.5x
// geometrically. A generic pool here backs the AABB tree's node arena,
// instead of duplicating the freelist bookkeeping per type.
type pool[T any] struct {
	items    []T
	freeHead int32 // -1 when empty
	next     []int32
	count    int32 // live (allocated, not-free) item count
}

func newPool[T any](capacity int) *pool[T] {
	if capacity < 1 {
		capacity = 1
	}
	p := &pool[T]{
		items:    make([]T, capacity),
		next:     make([]int32, capacity),
		freeHead: 0,
	}
	for i := 0; i < capacity; i++ {
		p.next[i] = int32(i + 1)
	}
	p.next[capacity-1] = -1
	return p
}

// alloc returns the index of a free slot, growing the pool 1.5x if needed.
func (p *pool[T]) alloc() int32 {
	if p.freeHead == -1 {
		p.grow()
	}
	idx := p.freeHead
	p.freeHead = p.next[idx]
	p.count++
	return idx
}

// free returns slot idx to the freelist and zeroes its value so it does
// not keep a stale reference alive.
func (p *pool[T]) free(idx int32) {
	var zero T
	p.items[idx] = zero
	p.next[idx] = p.freeHead
	p.freeHead = idx
	p.count--
}

func (p *pool[T]) grow() {
	oldCap := int32(len(p.items))
	newCap := oldCap + oldCap/2
	if newCap <= oldCap {
		newCap = oldCap + 1
	}
	items := make([]T, newCap)
	copy(items, p.items)
	next := make([]int32, newCap)
	copy(next, p.next)
	for i := oldCap; i < newCap; i++ {
		next[i] = i + 1
	}
	next[newCap-1] = -1
	p.items = items
	p.next = next
	p.freeHead = oldCap
}

func (p *pool[T]) get(idx int32) *T { return &p.items[idx] }

func (p *pool[T]) capacity() int32 { return int32(len(p.items)) }

func (p *pool[T]) live() int32 { return p.count }
