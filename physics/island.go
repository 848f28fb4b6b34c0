package physics

// Island groups bodies, contacts, and joints that can affect one
// another transitively, letting a caller solve/step them independently
// (spec.md §4.6 step 5, optional). Only non-sleeping dynamic bodies are
// members: static and kinematic bodies never appear in Bodies, and a
// contact or joint linking a dynamic body to one of them is listed in
// that dynamic body's island.
type Island struct {
	Bodies   []*Body
	Contacts []*Contact
	Joints   []Joint
}

// buildIslands unions non-sleeping dynamic bodies connected by a
// touching contact or a joint, using the union-find shape of the
// teacher's physics/broad.go (uf_find/uf_union/uf_collect_all,
// broad_collect_simulation_islands), rewired over this module's *Body/
// *Contact/Joint types instead of the teacher's Body interface and
// renamed to this package's camelCase convention (the teacher's own
// snake_case in that one file is a holdover from its C-derived origin,
// not followed elsewhere in this rewrite). Per spec.md §9's resolved
// Open Question, this is the *optional* island-assembly step, not the
// broad phase itself — pair generation always comes from the AABB tree.
func buildIslands(bodies []*Body, contacts []*Contact, joints []Joint) []Island {
	parent := make(map[uint32]uint32, len(bodies))
	for _, b := range bodies {
		if b.kind == Dynamic && !b.sleeping {
			parent[b.id] = b.id
		}
	}

	var find func(uint32) uint32
	find = func(x uint32) uint32 {
		p, ok := parent[x]
		if !ok || p == x {
			return x
		}
		root := find(p)
		parent[x] = root
		return root
	}
	union := func(x, y uint32) {
		_, okX := parent[x]
		_, okY := parent[y]
		if !okX || !okY {
			return
		}
		parent[find(x)] = find(y)
	}

	for _, c := range contacts {
		if !c.touching {
			continue
		}
		if c.bodyA.kind == Dynamic && c.bodyB.kind == Dynamic {
			union(c.bodyA.id, c.bodyB.id)
		}
	}
	for _, j := range joints {
		a, b := j.BodyA(), j.BodyB()
		if a.kind == Dynamic && b.kind == Dynamic {
			union(a.id, b.id)
		}
	}

	rootIndex := make(map[uint32]int)
	var islands []Island
	islandOf := func(b *Body) int {
		if b.kind != Dynamic || b.sleeping {
			return -1
		}
		root := find(b.id)
		idx, ok := rootIndex[root]
		if !ok {
			idx = len(islands)
			islands = append(islands, Island{})
			rootIndex[root] = idx
		}
		return idx
	}

	for _, b := range bodies {
		if idx := islandOf(b); idx >= 0 {
			islands[idx].Bodies = append(islands[idx].Bodies, b)
		}
	}
	for _, c := range contacts {
		if !c.touching {
			continue
		}
		idx := -1
		if c.bodyA.kind == Dynamic && !c.bodyA.sleeping {
			idx = islandOf(c.bodyA)
		} else if c.bodyB.kind == Dynamic && !c.bodyB.sleeping {
			idx = islandOf(c.bodyB)
		}
		if idx >= 0 {
			islands[idx].Contacts = append(islands[idx].Contacts, c)
		}
	}
	for _, j := range joints {
		idx := -1
		if j.BodyA().kind == Dynamic && !j.BodyA().sleeping {
			idx = islandOf(j.BodyA())
		} else if j.BodyB().kind == Dynamic && !j.BodyB().sleeping {
			idx = islandOf(j.BodyB())
		}
		if idx >= 0 {
			islands[idx].Joints = append(islands[idx].Joints, j)
		}
	}
	return islands
}
