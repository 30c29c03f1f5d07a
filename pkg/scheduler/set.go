package scheduler

import "github.com/aretw0/skillgraph/pkg/graph"

// nodeSet is an insertion-ordered set of nodes.
type nodeSet struct {
	name  string
	order []*graph.Node
	has   map[*graph.Node]struct{}
}

func newNodeSet(name string) *nodeSet {
	return &nodeSet{name: name, has: make(map[*graph.Node]struct{})}
}

func (s *nodeSet) add(n *graph.Node) bool {
	if _, ok := s.has[n]; ok {
		return false
	}
	s.has[n] = struct{}{}
	s.order = append(s.order, n)
	return true
}

func (s *nodeSet) remove(n *graph.Node) bool {
	if _, ok := s.has[n]; !ok {
		return false
	}
	delete(s.has, n)
	for i, existing := range s.order {
		if existing == n {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *nodeSet) contains(n *graph.Node) bool {
	_, ok := s.has[n]
	return ok
}

func (s *nodeSet) len() int { return len(s.order) }

func (s *nodeSet) snapshot() []*graph.Node {
	return append([]*graph.Node(nil), s.order...)
}

func (s *nodeSet) guids() []string {
	out := make([]string, len(s.order))
	for i, n := range s.order {
		out[i] = n.GUID
	}
	return out
}
