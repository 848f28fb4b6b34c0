package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func box(minX, minY, maxX, maxY float64) geo.AABB {
	return geo.AABB{Min: geo.V2(minX, minY), Max: geo.V2(maxX, maxY)}
}

func TestAABBTreeCreateProxyFattensAABB(t *testing.T) {
	tree := NewAABBTree(0.1, 2.0, SAHArea)
	p := tree.CreateProxy(nil, box(0, 0, 1, 1))
	fat := tree.FatAABB(p)
	if fat.Min.X > -0.05 || fat.Max.X < 1.05 {
		t.Fatalf("expected the stored AABB to be fattened by the margin, got %+v", fat)
	}
}

func TestAABBTreeQueryAABBFindsOverlappingProxy(t *testing.T) {
	tree := NewAABBTree(0.01, 2.0, SAHArea)
	a := &Collider{}
	tree.CreateProxy(a, box(0, 0, 1, 1))
	tree.CreateProxy(&Collider{}, box(100, 100, 101, 101))

	var hits []*Collider
	tree.QueryAABB(box(-1, -1, 2, 2), func(c *Collider) bool {
		hits = append(hits, c)
		return true
	})
	if len(hits) != 1 || hits[0] != a {
		t.Fatalf("expected exactly the overlapping collider, got %v", hits)
	}
}

func TestAABBTreeMoveProxyReportsMoved(t *testing.T) {
	tree := NewAABBTree(0.01, 2.0, SAHArea)
	p := tree.CreateProxy(&Collider{}, box(0, 0, 1, 1))
	tree.ClearMoved(p)
	if tree.Moved(p) {
		t.Fatal("expected Moved to be false right after ClearMoved")
	}

	moved := tree.MoveProxy(p, box(10, 10, 11, 11), geo.V2(1, 0), false)
	if !moved {
		t.Fatal("expected MoveProxy to report a move for a far displacement")
	}
	if !tree.Moved(p) {
		t.Fatal("expected Moved to be true after MoveProxy")
	}
}

func TestAABBTreeRemoveProxyDropsItFromQueries(t *testing.T) {
	tree := NewAABBTree(0.01, 2.0, SAHArea)
	p := tree.CreateProxy(&Collider{}, box(0, 0, 1, 1))
	tree.RemoveProxy(p)

	var hits int
	tree.QueryAABB(box(-1, -1, 2, 2), func(c *Collider) bool {
		hits++
		return true
	})
	if hits != 0 {
		t.Fatalf("expected no hits after RemoveProxy, got %d", hits)
	}
}
