package physics

import "testing"

func TestPoolAllocFreeReusesSlots(t *testing.T) {
	p := newPool[int](2)

	a := p.alloc()
	b := p.alloc()
	if a == b {
		t.Fatalf("expected distinct slots, got %d and %d", a, b)
	}
	if p.live() != 2 {
		t.Fatalf("expected 2 live slots, got %d", p.live())
	}

	p.free(a)
	if p.live() != 1 {
		t.Fatalf("expected 1 live slot after free, got %d", p.live())
	}
	c := p.alloc()
	if c != a {
		t.Fatalf("expected alloc to reuse the freed slot %d, got %d", a, c)
	}
}

func TestPoolGrowsPastInitialCapacity(t *testing.T) {
	p := newPool[int](1)
	const n = 10
	indices := make([]int32, n)
	for i := 0; i < n; i++ {
		indices[i] = p.alloc()
		*p.get(indices[i]) = i
	}
	if p.capacity() < n {
		t.Fatalf("expected pool to grow to at least %d, got capacity %d", n, p.capacity())
	}
	for i := 0; i < n; i++ {
		if *p.get(indices[i]) != i {
			t.Fatalf("slot %d: expected value %d, got %d", indices[i], i, *p.get(indices[i]))
		}
	}
}
