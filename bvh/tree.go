package bvh

import (
	"fmt"
)

// None marks an absent node or item index.
const None int32 = -1

// Node is one slot of the tree arena. Leaves carry an item index; internal
// nodes always have both children and Item == None.
type Node struct {
	Bounds AABB
	Parent int32
	Left   int32
	Right  int32
	Item   int32
}

func (n *Node) IsLeaf() bool {
	return n.Left == None
}

// Tree is a binary bounding volume hierarchy grown by one-at-a-time insertion.
// Nodes live in a flat arena and reference each other by index so the whole
// tree can be dropped and rebuilt every pass without reallocating.
type Tree struct {
	nodes []Node
	root  int32
	items int
}

func NewTree(capacity int) *Tree {
	t := &Tree{}
	if capacity > 0 {
		t.nodes = make([]Node, 0, 2*capacity-1)
	}
	t.Reset()
	return t
}

// Reset empties the tree but keeps the arena storage.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.root = None
	t.items = 0
}

// Len returns the number of inserted items.
func (t *Tree) Len() int {
	return t.items
}

// Root returns the root index, or None for an empty tree.
func (t *Tree) Root() int32 {
	return t.root
}

// NodeCount returns the number of arena slots in use.
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Node returns a copy of the node at idx.
func (t *Tree) Node(idx int32) Node {
	return t.nodes[idx]
}

func (t *Tree) alloc(n Node) int32 {
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

func (t *Tree) newLeaf(parent int32, item int32, bounds AABB) int32 {
	return t.alloc(Node{Bounds: bounds, Parent: parent, Left: None, Right: None, Item: item})
}

// Insert adds item with the given bounds.
//
// A leaf is split into two children holding the old and the new item. An
// internal node passes the item to whichever child grows least, and the
// enclosing volumes are then refit from the new leaf up to the root.
func (t *Tree) Insert(item int, bounds AABB) {
	t.items++
	if t.root == None {
		t.root = t.newLeaf(None, int32(item), bounds)
		return
	}

	idx := t.root
	for !t.nodes[idx].IsLeaf() {
		n := &t.nodes[idx]
		left, right := &t.nodes[n.Left], &t.nodes[n.Right]
		costL := left.Bounds.Growth(bounds)
		costR := right.Bounds.Growth(bounds)
		if costL == costR {
			costL = left.Bounds.Proximity(bounds)
			costR = right.Bounds.Proximity(bounds)
		}
		if costR < costL {
			idx = n.Right
		} else {
			idx = n.Left
		}
	}

	// idx is a leaf: move its item down and turn it into an internal node.
	old := t.nodes[idx]
	l := t.newLeaf(idx, old.Item, old.Bounds)
	r := t.newLeaf(idx, int32(item), bounds)
	n := &t.nodes[idx]
	n.Left, n.Right, n.Item = l, r, None

	for p := idx; p != None; p = t.nodes[p].Parent {
		pn := &t.nodes[p]
		pn.Bounds = t.nodes[pn.Left].Bounds.Union(t.nodes[pn.Right].Bounds)
	}
}

// Leaves calls fn for every leaf with its item and bounds.
func (t *Tree) Leaves(fn func(item int, bounds AABB)) {
	for i := range t.nodes {
		if t.nodes[i].IsLeaf() {
			fn(int(t.nodes[i].Item), t.nodes[i].Bounds)
		}
	}
}

// Depth returns the number of levels, 0 for an empty tree.
func (t *Tree) Depth() int {
	if t.root == None {
		return 0
	}
	var depth func(idx int32) int
	depth = func(idx int32) int {
		n := &t.nodes[idx]
		if n.IsLeaf() {
			return 1
		}
		return 1 + max(depth(n.Left), depth(n.Right))
	}
	return depth(t.root)
}

// Pairs calls visit for every pair of items whose leaf bounds overlap. Every
// internal node cross-tests its two subtrees; subtrees whose enclosing
// volumes are disjoint are skipped as a whole.
func (t *Tree) Pairs(visit func(a, b int)) {
	if t.root == None {
		return
	}
	t.selfPairs(t.root, visit)
}

func (t *Tree) selfPairs(idx int32, visit func(a, b int)) {
	n := &t.nodes[idx]
	if n.IsLeaf() {
		return
	}
	left, right := n.Left, n.Right
	t.selfPairs(left, visit)
	t.selfPairs(right, visit)
	t.crossPairs(left, right, visit)
}

func (t *Tree) crossPairs(a, b int32, visit func(a, b int)) {
	na, nb := &t.nodes[a], &t.nodes[b]
	if !na.Bounds.Overlaps(nb.Bounds) {
		return
	}
	switch {
	case na.IsLeaf() && nb.IsLeaf():
		visit(int(na.Item), int(nb.Item))
	case na.IsLeaf() || (!nb.IsLeaf() && nb.Bounds.Volume() > na.Bounds.Volume()):
		// descend the larger side
		l, r := nb.Left, nb.Right
		t.crossPairs(a, l, visit)
		t.crossPairs(a, r, visit)
	default:
		l, r := na.Left, na.Right
		t.crossPairs(l, b, visit)
		t.crossPairs(r, b, visit)
	}
}

// Validate checks parent links, child containment and the leaf count.
func (t *Tree) Validate() error {
	if t.root == None {
		if t.items != 0 {
			return fmt.Errorf("empty tree reports %d items", t.items)
		}
		return nil
	}
	if t.nodes[t.root].Parent != None {
		return fmt.Errorf("root %d has parent %d", t.root, t.nodes[t.root].Parent)
	}
	leaves := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.IsLeaf() {
			leaves++
			if n.Right != None || n.Item == None {
				return fmt.Errorf("leaf %d is malformed", i)
			}
			continue
		}
		if n.Right == None || n.Item != None {
			return fmt.Errorf("internal node %d is malformed", i)
		}
		for _, c := range [2]int32{n.Left, n.Right} {
			if t.nodes[c].Parent != int32(i) {
				return fmt.Errorf("node %d: child %d points at parent %d", i, c, t.nodes[c].Parent)
			}
			if !n.Bounds.Contains(t.nodes[c].Bounds) {
				return fmt.Errorf("node %d does not contain child %d", i, c)
			}
		}
	}
	if leaves != t.items {
		return fmt.Errorf("found %d leaves, want %d", leaves, t.items)
	}
	return nil
}
