package workflow

import "fmt"

// Workflow is a mutable collection of nodes. Nodes accumulate via Add;
// ValidateDAG/Sinks/AncestorClosure/TopologicalOrder are pure queries over the
// current node set. Compilation (done by the sibling compiler package) never
// mutates a Workflow, so the same Workflow can be compiled any number of
// times with identical results (see TopologicalOrder's stability rule).
type Workflow struct {
	Name string

	nodes map[string]Node
	order []string // insertion order of node ids, the source of all stability
}

// New creates an empty, named Workflow.
func New(name string) *Workflow {
	return &Workflow{
		Name:  name,
		nodes: make(map[string]Node),
	}
}

// Add registers a new node bound to task, with the given parent ids and
// "consume parent results" flag. It fails with CodeDuplicateNode if nodeID
// is already used, and with CodeDuplicateDependency if dependsOn repeats a
// parent id.
func (w *Workflow) Add(task TaskDescriptor, nodeID string, dependsOn []string, consumeDependencyResults bool) (string, error) {
	if _, exists := w.nodes[nodeID]; exists {
		return "", newError(CodeDuplicateNode, fmt.Sprintf("duplicate node id %q", nodeID), nil)
	}

	seen := make(map[string]struct{}, len(dependsOn))
	depsCopy := make([]string, len(dependsOn))
	for i, dep := range dependsOn {
		if _, dup := seen[dep]; dup {
			return "", newError(CodeDuplicateDependency,
				fmt.Sprintf("node %q lists dependency %q more than once", nodeID, dep), nil)
		}
		seen[dep] = struct{}{}
		depsCopy[i] = dep
	}

	w.nodes[nodeID] = Node{
		NodeID:                   nodeID,
		Task:                     task,
		DependsOn:                depsCopy,
		ConsumeDependencyResults: consumeDependencyResults,
	}
	w.order = append(w.order, nodeID)
	return nodeID, nil
}

// Node returns the node for id, if present.
func (w *Workflow) Node(id string) (Node, bool) {
	n, ok := w.nodes[id]
	return n, ok
}

// Len returns the number of nodes in the workflow.
func (w *Workflow) Len() int { return len(w.nodes) }

// NodeIDs returns all node ids in insertion order.
func (w *Workflow) NodeIDs() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

func (w *Workflow) dependentsOf() map[string][]string {
	dependents := make(map[string][]string, len(w.nodes))
	for _, id := range w.order {
		dependents[id] = nil
	}
	for _, id := range w.order {
		for _, dep := range w.nodes[id].DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}
	return dependents
}

// Sinks returns the ids of nodes with no dependents, in insertion order.
func (w *Workflow) Sinks() []string {
	dependents := w.dependentsOf()
	var sinks []string
	for _, id := range w.order {
		if len(dependents[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// UsesJoin reports whether any node has two or more parents.
func (w *Workflow) UsesJoin() bool {
	for _, id := range w.order {
		if len(w.nodes[id].DependsOn) > 1 {
			return true
		}
	}
	return false
}

// ValidateDAG checks I2 (no self-dependency) and I1 (no dangling
// dependency) node by node in insertion order, testing each dependency for
// I2 before I1, and then I3 (acyclic). Cycle detection is Kahn's algorithm:
// successive removal of zero-in-degree nodes; if fewer nodes are visited
// than exist, the graph has a cycle.
func (w *Workflow) ValidateDAG() error {
	for _, id := range w.order {
		n := w.nodes[id]
		for _, dep := range n.DependsOn {
			if dep == id {
				return newError(CodeSelfDependency,
					fmt.Sprintf("node %q cannot depend on itself", id), nil)
			}
			if _, ok := w.nodes[dep]; !ok {
				return newError(CodeMissingDependency,
					fmt.Sprintf("node %q depends on missing node %q", id, dep), nil)
			}
		}
	}

	indegree := make(map[string]int, len(w.nodes))
	children := make(map[string][]string, len(w.nodes))
	for _, id := range w.order {
		indegree[id] = 0
	}
	for _, id := range w.order {
		for _, dep := range w.nodes[id].DependsOn {
			indegree[id]++
			children[dep] = append(children[dep], id)
		}
	}

	ready := make([]string, 0, len(w.order))
	for _, id := range w.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	visited := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		visited++
		for _, ch := range children[id] {
			indegree[ch]--
			if indegree[ch] == 0 {
				ready = append(ready, ch)
			}
		}
	}

	if visited != len(w.nodes) {
		return newError(CodeCycle, "workflow contains a cycle", nil)
	}
	return nil
}

// AncestorClosure returns {nodeID} union every node reachable backward along
// parent edges. Fails with CodeUnknownNode if nodeID is absent.
func (w *Workflow) AncestorClosure(nodeID string) (map[string]struct{}, error) {
	if _, ok := w.nodes[nodeID]; !ok {
		return nil, newError(CodeUnknownNode, fmt.Sprintf("unknown node %q", nodeID), nil)
	}

	closure := make(map[string]struct{})
	var visit func(id string)
	visit = func(id string) {
		if _, seen := closure[id]; seen {
			return
		}
		closure[id] = struct{}{}
		for _, dep := range w.nodes[id].DependsOn {
			visit(dep)
		}
	}
	visit(nodeID)
	return closure, nil
}

// TopologicalOrder returns a stable Kahn order over the induced subgraph on
// selected: among nodes currently ready (in-degree zero within the induced
// subgraph), the one inserted earliest into the workflow always comes next.
// Fails with CodeCycle if the induced subgraph is cyclic (unreachable for a
// selected set coming from AncestorClosure on a validated workflow).
func (w *Workflow) TopologicalOrder(selected map[string]struct{}) ([]string, error) {
	indegree := make(map[string]int, len(selected))
	for id := range selected {
		indegree[id] = 0
	}
	for id := range selected {
		for _, dep := range w.nodes[id].DependsOn {
			if _, ok := selected[dep]; ok {
				indegree[id]++
			}
		}
	}

	dependents := w.dependentsOf()
	done := make(map[string]struct{}, len(selected))
	order := make([]string, 0, len(selected))

	for len(order) < len(selected) {
		progressed := false
		for _, id := range w.order {
			if _, inSet := selected[id]; !inSet {
				continue
			}
			if _, already := done[id]; already {
				continue
			}
			if indegree[id] != 0 {
				continue
			}
			order = append(order, id)
			done[id] = struct{}{}
			progressed = true
			for _, dependent := range dependents[id] {
				if _, inSet := selected[dependent]; inSet {
					indegree[dependent]--
				}
			}
			break
		}
		if !progressed {
			return nil, newError(CodeCycle, "induced subgraph contains a cycle", nil)
		}
	}

	return order, nil
}
