package main

type nodeID int32

// searchNode is one position in the turn's game tree. The board for it is
// rebuilt by replaying the path from the root, so nothing else is stored.
type searchNode struct {
	dir      Direction
	expanded bool
	count    uint8
	children [4]nodeID
}

// nodeArena owns every node of one turn. Handles stay valid until reset;
// pointers into nodes do not survive an alloc.
type nodeArena struct {
	nodes []searchNode
}

func newNodeArena(capacity int) *nodeArena {
	return &nodeArena{nodes: make([]searchNode, 0, capacity)}
}

func (a *nodeArena) reset() {
	a.nodes = a.nodes[:0]
}

func (a *nodeArena) alloc(dir Direction) nodeID {
	a.nodes = append(a.nodes, searchNode{dir: dir})
	return nodeID(len(a.nodes) - 1)
}

func (a *nodeArena) len() int {
	return len(a.nodes)
}

// expand creates one child per direction mover can take from b.
func (a *nodeArena) expand(id nodeID, b *Board, mover Player) {
	var children [4]nodeID
	count := 0
	for _, dir := range allDirections {
		if b.IsPassable(dir, mover) {
			children[count] = a.alloc(dir)
			count++
		}
	}
	node := &a.nodes[id]
	node.children = children
	node.count = uint8(count)
	node.expanded = true
}

func (a *nodeArena) children(id nodeID) []nodeID {
	node := &a.nodes[id]
	return node.children[:node.count]
}
