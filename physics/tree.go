package physics

import (
	"github.com/bresilla/muli/geo"
)

const nullNode int32 = -1

// SAHMode selects the surface-area-heuristic cost function the tree uses to
// rank insertion candidates and rotations. spec.md §9 resolves this Open
// Question in favor of Area as the default, matching
// original_source/include/muli/aabb_tree.h's SAH()'s #if 1 branch.
type SAHMode int

const (
	SAHArea SAHMode = iota
	SAHPerimeter
)

func (m SAHMode) cost(a geo.AABB) float64 {
	if m == SAHPerimeter {
		return a.Perimeter()
	}
	return a.Area()
}

// treeNode is one slot of the AABBTree's node pool. Leaves hold a
// collider; internal nodes hold two children. Parent/child links are
// plain int32 indices into the pool rather than pointers, per spec.md §3's
// Node data model and §5's "nodes ... are referenced by integer indices,
// never raw pointers" resource policy.
type treeNode struct {
	aabb   geo.AABB
	parent int32
	child1 int32
	child2 int32
	leaf   bool
	moved  bool

	collider *Collider
}

// AABBTree is a dynamic bounding-volume hierarchy over collider AABBs: the
// broad phase of spec.md §4.1. Proxies are stable int32 node indices for
// as long as they remain registered; Rebuild/Reset may reassign them.
type AABBTree struct {
	nodes *pool[treeNode]
	root  int32

	margin     float64
	multiplier float64
	sah        SAHMode
}

// NewAABBTree builds an empty tree. margin is the constant fattening
// applied to every stored AABB; multiplier scales the velocity-direction
// extension on move (spec.md §4.1's "Fattening").
func NewAABBTree(margin, multiplier float64, sah SAHMode) *AABBTree {
	return &AABBTree{
		nodes:      newPool[treeNode](32),
		root:       nullNode,
		margin:     margin,
		multiplier: multiplier,
		sah:        sah,
	}
}

// CreateProxy inserts a new leaf for collider with tight AABB aabb and
// returns its proxy handle. The stored AABB is fattened by the tree's
// margin, per spec.md §4.1.
func (t *AABBTree) CreateProxy(collider *Collider, aabb geo.AABB) proxyID {
	idx := t.allocNode()
	n := t.nodes.get(idx)
	n.aabb = aabb.Expand(t.margin)
	n.collider = collider
	n.leaf = true
	n.moved = true
	n.parent = nullNode
	t.insertLeaf(idx)
	return proxyID(idx)
}

// MoveProxy updates proxy's tight AABB, fattening and extending it in the
// direction of displacement. It returns false (a no-op) when the existing
// fat AABB already contains the new tight AABB and force is false —
// matching original_source's MoveNode(..., forceMove) contract.
func (t *AABBTree) MoveProxy(proxy proxyID, aabb geo.AABB, displacement geo.Vec2, force bool) bool {
	idx := int32(proxy)
	n := t.nodes.get(idx)
	if !force && n.aabb.Contains(aabb) {
		return false
	}

	d := displacement.Scale(t.multiplier)
	if d.X > 0 {
		aabb.Max.X += d.X
	} else {
		aabb.Min.X += d.X
	}
	if d.Y > 0 {
		aabb.Max.Y += d.Y
	} else {
		aabb.Min.Y += d.Y
	}
	aabb = aabb.Expand(t.margin)

	t.removeLeaf(idx)
	n.aabb = aabb
	t.insertLeaf(idx)
	n.moved = true
	return true
}

// RemoveProxy removes proxy from the tree and frees its node.
func (t *AABBTree) RemoveProxy(proxy proxyID) {
	idx := int32(proxy)
	t.removeLeaf(idx)
	t.nodes.free(idx)
}

// FatAABB returns the tree's stored (fattened) AABB for proxy.
func (t *AABBTree) FatAABB(proxy proxyID) geo.AABB {
	return t.nodes.get(int32(proxy)).aabb
}

// ClearMoved clears the moved flag on proxy, called once World.Step has
// reported its pairs for this tick.
func (t *AABBTree) ClearMoved(proxy proxyID) {
	t.nodes.get(int32(proxy)).moved = false
}

// Moved reports whether proxy's leaf moved since the last ClearMoved.
func (t *AABBTree) Moved(proxy proxyID) bool {
	return t.nodes.get(int32(proxy)).moved
}

// ColliderAt returns the collider a leaf proxy refers to.
func (t *AABBTree) ColliderAt(proxy proxyID) *Collider {
	return t.nodes.get(int32(proxy)).collider
}

func (t *AABBTree) allocNode() int32 {
	idx := t.nodes.alloc()
	n := t.nodes.get(idx)
	n.parent, n.child1, n.child2 = nullNode, nullNode, nullNode
	n.leaf = false
	n.moved = false
	n.collider = nil
	return idx
}

// insertLeaf is the branch-and-bound best-sibling search of spec.md §4.1,
// followed by walking back to the root refitting AABBs and applying
// rotations — grounded on original_source's AABBTree::InsertLeaf/Rotate
// (the `#if 1` branch-and-bound variant).
func (t *AABBTree) insertLeaf(leaf int32) {
	if t.root == nullNode {
		t.root = leaf
		return
	}

	leafAABB := t.nodes.get(leaf).aabb

	type candidate struct {
		node          int32
		inheritedCost float64
	}
	stack := []candidate{{t.root, 0}}

	best := t.root
	bestCost := t.sah.cost(geo.Union(t.nodes.get(t.root).aabb, leafAABB))

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cur := t.nodes.get(c.node)
		combined := geo.Union(cur.aabb, leafAABB)
		directCost := t.sah.cost(combined)

		cost := directCost + c.inheritedCost
		if cost < bestCost {
			bestCost = cost
			best = c.node
		}

		inherited := c.inheritedCost + directCost - t.sah.cost(cur.aabb)
		lowerBound := t.sah.cost(leafAABB) + inherited
		if lowerBound < bestCost && !cur.leaf {
			stack = append(stack, candidate{cur.child1, inherited}, candidate{cur.child2, inherited})
		}
	}

	sibling := best
	oldParent := t.nodes.get(sibling).parent
	newParent := t.allocNode()
	pn := t.nodes.get(newParent)
	pn.aabb = geo.Union(leafAABB, t.nodes.get(sibling).aabb)
	pn.parent = oldParent
	pn.child1 = sibling
	pn.child2 = leaf

	if oldParent != nullNode {
		op := t.nodes.get(oldParent)
		if op.child1 == sibling {
			op.child1 = newParent
		} else {
			op.child2 = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes.get(sibling).parent = newParent
	t.nodes.get(leaf).parent = newParent

	ancestor := t.nodes.get(leaf).parent
	for ancestor != nullNode {
		an := t.nodes.get(ancestor)
		an.aabb = geo.Union(t.nodes.get(an.child1).aabb, t.nodes.get(an.child2).aabb)
		t.rotate(ancestor)
		ancestor = t.nodes.get(ancestor).parent
	}
}

// rotate considers up to four local swaps at node's level and applies the
// one that strictly reduces combined SAH cost the most — spec.md §4.1's
// "Post-insertion rotations", grounded on AABBTree::Rotate.
func (t *AABBTree) rotate(node int32) {
	n := t.nodes.get(node)
	if n.leaf || n.parent == nullNode {
		return
	}

	parent := t.nodes.get(n.parent)
	var sibling int32
	if parent.child1 == node {
		sibling = parent.child2
	} else {
		sibling = parent.child1
	}
	sib := t.nodes.get(sibling)

	nodeCost := t.sah.cost(n.aabb)
	var diffs [4]float64
	count := 2
	diffs[0] = t.sah.cost(geo.Union(sib.aabb, t.nodes.get(n.child1).aabb)) - nodeCost
	diffs[1] = t.sah.cost(geo.Union(sib.aabb, t.nodes.get(n.child2).aabb)) - nodeCost

	if !sib.leaf {
		sibCost := t.sah.cost(sib.aabb)
		diffs[2] = t.sah.cost(geo.Union(n.aabb, t.nodes.get(sib.child1).aabb)) - sibCost
		diffs[3] = t.sah.cost(geo.Union(n.aabb, t.nodes.get(sib.child2).aabb)) - sibCost
		count = 4
	}

	best := 0
	for i := 1; i < count; i++ {
		if diffs[i] < diffs[best] {
			best = i
		}
	}
	if diffs[best] >= 0 {
		return
	}

	switch best {
	case 0: // swap sibling <-> node.child2
		t.swapChild(n.parent, sibling, n.child2)
		t.nodes.get(n.child2).parent = n.parent
		n.child2 = sibling
		sib.parent = node
		n.aabb = geo.Union(sib.aabb, t.nodes.get(n.child1).aabb)
	case 1: // swap sibling <-> node.child1
		t.swapChild(n.parent, sibling, n.child1)
		t.nodes.get(n.child1).parent = n.parent
		n.child1 = sibling
		sib.parent = node
		n.aabb = geo.Union(sib.aabb, t.nodes.get(n.child2).aabb)
	case 2: // swap node <-> sibling.child2
		t.swapChild(n.parent, node, sib.child2)
		t.nodes.get(sib.child2).parent = n.parent
		sib.child2 = node
		n.parent = sibling
		sib.aabb = geo.Union(n.aabb, t.nodes.get(sib.child2).aabb)
	case 3: // swap node <-> sibling.child1
		t.swapChild(n.parent, node, sib.child1)
		t.nodes.get(sib.child1).parent = n.parent
		sib.child1 = node
		n.parent = sibling
		sib.aabb = geo.Union(n.aabb, t.nodes.get(sib.child1).aabb)
	}
}

func (t *AABBTree) swapChild(parent, from, to int32) {
	p := t.nodes.get(parent)
	if p.child1 == from {
		p.child1 = to
	} else {
		p.child2 = to
	}
}

// removeLeaf splices leaf out, frees its parent, and refits ancestors —
// spec.md §4.1's "Removal", grounded on AABBTree::RemoveLeaf.
func (t *AABBTree) removeLeaf(leaf int32) {
	parent := t.nodes.get(leaf).parent
	if parent == nullNode {
		t.root = nullNode
		return
	}

	pn := t.nodes.get(parent)
	var sibling int32
	if pn.child1 == leaf {
		sibling = pn.child2
	} else {
		sibling = pn.child1
	}

	grandParent := pn.parent
	if grandParent != nullNode {
		gp := t.nodes.get(grandParent)
		if gp.child1 == parent {
			gp.child1 = sibling
		} else {
			gp.child2 = sibling
		}
		t.nodes.get(sibling).parent = grandParent
		t.nodes.free(parent)

		ancestor := grandParent
		for ancestor != nullNode {
			an := t.nodes.get(ancestor)
			an.aabb = geo.Union(t.nodes.get(an.child1).aabb, t.nodes.get(an.child2).aabb)
			ancestor = an.parent
		}
	} else {
		t.root = sibling
		t.nodes.get(sibling).parent = nullNode
		t.nodes.free(parent)
	}
}

// QueryCallback receives each leaf collider overlapping a query; returning
// false stops the traversal early.
type QueryCallback func(c *Collider) bool

// QueryPoint visits every collider whose fat AABB contains point.
func (t *AABBTree) QueryPoint(point geo.Vec2, cb QueryCallback) {
	t.walk(func(idx int32) bool { return t.nodes.get(idx).aabb.ContainsPoint(point) }, cb)
}

// QueryAABB visits every collider whose fat AABB overlaps aabb.
func (t *AABBTree) QueryAABB(aabb geo.AABB, cb QueryCallback) {
	t.walk(func(idx int32) bool { return t.nodes.get(idx).aabb.Overlaps(aabb) }, cb)
}

// walk runs an explicit-stack descent, testing each node with admit before
// recursing into children; admits a callback for leaves.
func (t *AABBTree) walk(admit func(int32) bool, cb QueryCallback) {
	if t.root == nullNode {
		return
	}
	stack := make([]int32, 0, 256)
	stack = append(stack, t.root)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !admit(cur) {
			continue
		}
		n := t.nodes.get(cur)
		if n.leaf {
			if !cb(n.collider) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// RayCastInput describes a segment from From to To, truncated to
// MaxFraction of its length.
type RayCastInput struct {
	From, To    geo.Vec2
	MaxFraction float64
}

// RayCastCallback is invoked for every leaf whose fat AABB the ray's
// conservative bounding box overlaps. Its return value controls the
// ray's remaining max fraction exactly as spec.md §6 specifies: 0
// terminates the cast, <0 ignores this hit and continues, and a positive
// value shrinks the ray to that new max fraction.
type RayCastCallback func(input RayCastInput, c *Collider) float64

// RayCast walks the tree along a perpendicular separating-axis test
// against each node's AABB, shrinking the ray's bounding box whenever the
// callback returns a smaller max fraction. Grounded on
// AABBTree::RayCast(GrowableArray version).
func (t *AABBTree) RayCast(input RayCastInput, cb RayCastCallback) {
	if t.root == nullNode {
		return
	}
	p1, p2 := input.From, input.To
	maxFraction := input.MaxFraction

	d := p2.Sub(p1)
	if d.Len2() < geo.Epsilon {
		return
	}
	d = d.Unit()
	perp := geo.V2(-d.Y, d.X)
	absPerp := geo.V2(abs(perp.X), abs(perp.Y))

	end := p1.AddScaled(p2.Sub(p1), maxFraction)
	rayBox := geo.NewAABB(p1, end)

	stack := []int32{t.root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if idx == nullNode {
			continue
		}
		n := t.nodes.get(idx)
		if !n.aabb.Overlaps(rayBox) {
			continue
		}

		center := n.aabb.Center()
		extents := n.aabb.Extents()
		separation := abs(perp.Dot(p1.Sub(center))) - absPerp.Dot(extents)
		if separation > 0 {
			continue
		}

		if n.leaf {
			sub := RayCastInput{From: p1, To: p2, MaxFraction: maxFraction}
			value := cb(sub, n.collider)
			if value == 0 {
				return
			}
			if value > 0 {
				maxFraction = value
				newEnd := p1.AddScaled(p2.Sub(p1), maxFraction)
				rayBox = geo.NewAABB(p1, newEnd)
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// TraverseCallback is invoked for every node (internal and leaf) during a
// full traversal, e.g. for debug drawing or tree-cost computation.
type TraverseCallback func(aabb geo.AABB, leaf bool, collider *Collider)

// Traverse visits every node in the tree in an unspecified (stack) order.
func (t *AABBTree) Traverse(cb TraverseCallback) {
	if t.root == nullNode {
		return
	}
	stack := []int32{t.root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes.get(idx)
		if !n.leaf {
			stack = append(stack, n.child1, n.child2)
		}
		cb(n.aabb, n.leaf, n.collider)
	}
}

// ComputeTreeCost sums the SAH cost of every node, a quality metric for
// tests and diagnostics.
func (t *AABBTree) ComputeTreeCost() float64 {
	cost := 0.0
	t.Traverse(func(aabb geo.AABB, leaf bool, _ *Collider) { cost += t.sah.cost(aabb) })
	return cost
}

// Rebuild discards the tree's internal structure and reinserts every live
// leaf bottom-up, greedily pairing the two leaves whose union has the
// lowest SAH cost until a single root remains. O(n^2 log n); spec.md §4.1
// calls this rare. Grounded on AABBTree::Rebuild.
func (t *AABBTree) Rebuild() {
	leaves := make([]int32, 0, t.nodes.live())
	// Walking the free list would require extra bookkeeping the pool
	// doesn't expose; instead treat every node reachable from the old
	// root as live, free the internal ones, and keep the leaves.
	if t.root != nullNode {
		stack := []int32{t.root}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := t.nodes.get(idx)
			if n.leaf {
				n.parent = nullNode
				leaves = append(leaves, idx)
			} else {
				stack = append(stack, n.child1, n.child2)
				t.nodes.free(idx)
			}
		}
	}

	if len(leaves) == 0 {
		t.root = nullNode
		return
	}
	for len(leaves) > 1 {
		minCost := geo.Large
		minI, minJ := -1, -1
		for i := 0; i < len(leaves); i++ {
			ai := t.nodes.get(leaves[i]).aabb
			for j := i + 1; j < len(leaves); j++ {
				aj := t.nodes.get(leaves[j]).aabb
				cost := t.sah.cost(geo.Union(ai, aj))
				if cost < minCost {
					minCost, minI, minJ = cost, i, j
				}
			}
		}

		i1, i2 := leaves[minI], leaves[minJ]
		parent := t.allocNode()
		pn := t.nodes.get(parent)
		pn.child1, pn.child2 = i1, i2
		pn.aabb = geo.Union(t.nodes.get(i1).aabb, t.nodes.get(i2).aabb)
		pn.parent = nullNode
		t.nodes.get(i1).parent = parent
		t.nodes.get(i2).parent = parent

		leaves[minI] = parent
		leaves[minJ] = leaves[len(leaves)-1]
		leaves = leaves[:len(leaves)-1]
	}
	t.root = leaves[0]
}
