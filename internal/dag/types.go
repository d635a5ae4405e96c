package dag

import "sync"

// Graph holds node ids and the dependencies between them. It is safe for
// concurrent use.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	// order is insertion order; traversals and Run follow it.
	order []string
}

type node struct {
	id         string
	seq        int
	deps       map[string]*node // predecessors
	dependents map[string]*node // successors
}
