package internal

// Status is the lifecycle state of a node within one search run.
type Status uint8

const (
	Unexplored Status = iota
	Open
	Closed
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unexplored"
	}
}

// NodeID indexes a node inside its Arena.
type NodeID int

// NoParent marks the root of the search tree.
const NoParent NodeID = -1

// Node wraps a graph element with its search bookkeeping.
type Node[NodeType comparable] struct {
	Element NodeType
	Parent  NodeID
	GScore  float64
	FCost   float64
	Status  Status
}

// Arena owns every node discovered during one run.
// Parent links are indices into the same arena, so nothing outlives Reset.
type Arena[NodeType comparable] struct {
	nodes []Node[NodeType]
	index map[NodeType]NodeID
}

// NewArena preallocates room for capacity nodes.
func NewArena[NodeType comparable](capacity int) *Arena[NodeType] {
	return &Arena[NodeType]{
		nodes: make([]Node[NodeType], 0, capacity),
		index: make(map[NodeType]NodeID, capacity),
	}
}

// Reset forgets every node but keeps the allocated storage.
func (arena *Arena[NodeType]) Reset() {
	clear(arena.nodes)
	arena.nodes = arena.nodes[:0]
	clear(arena.index)
}

func (arena *Arena[NodeType]) Len() int { return len(arena.nodes) }

// Lookup returns the node already created for element in this run.
func (arena *Arena[NodeType]) Lookup(element NodeType) (NodeID, bool) {
	id, ok := arena.index[element]
	return id, ok
}

// Add creates an Unexplored node. The element must not be present yet.
func (arena *Arena[NodeType]) Add(element NodeType, parent NodeID, gScore, fCost float64) NodeID {
	id := NodeID(len(arena.nodes))
	arena.nodes = append(arena.nodes, Node[NodeType]{
		Element: element,
		Parent:  parent,
		GScore:  gScore,
		FCost:   fCost,
	})
	arena.index[element] = id
	return id
}

// Node returns a pointer that stays valid only until the next Add.
func (arena *Arena[NodeType]) Node(id NodeID) *Node[NodeType] {
	return &arena.nodes[id]
}

// Each visits nodes in discovery order.
func (arena *Arena[NodeType]) Each(visit func(id NodeID, node *Node[NodeType])) {
	for i := range arena.nodes {
		visit(NodeID(i), &arena.nodes[i])
	}
}

// ReconstructPath follows parent links from id back to the root and
// returns the elements root first.
func (arena *Arena[NodeType]) ReconstructPath(id NodeID) []NodeType {
	length := 0
	for cur := id; cur != NoParent; cur = arena.nodes[cur].Parent {
		length++
	}
	path := make([]NodeType, length)
	for cur := id; cur != NoParent; cur = arena.nodes[cur].Parent {
		length--
		path[length] = arena.nodes[cur].Element
	}
	return path
}

// Compact copies the nodes accepted by keep into a new arena, preserving
// discovery order. Parent links are remapped; a parent that was not kept
// becomes NoParent.
func (arena *Arena[NodeType]) Compact(keep func(node *Node[NodeType]) bool) *Arena[NodeType] {
	out := NewArena[NodeType](len(arena.nodes))
	remap := make(map[NodeID]NodeID, len(arena.nodes))
	for i := range arena.nodes {
		node := &arena.nodes[i]
		if !keep(node) {
			continue
		}
		id := out.Add(node.Element, NoParent, node.GScore, node.FCost)
		out.nodes[id].Status = node.Status
		remap[NodeID(i)] = id
	}
	for oldID, newID := range remap {
		if parent, ok := remap[arena.nodes[oldID].Parent]; ok {
			out.nodes[newID].Parent = parent
		}
	}
	return out
}
