package workflow

// Node is the immutable record of one workflow vertex: its id, the task it
// is bound to, the (ordered) ids of its parents, and whether it wants its
// parents' results injected as its first call argument.
type Node struct {
	NodeID                   string
	Task                     TaskDescriptor
	DependsOn                []string
	ConsumeDependencyResults bool
}

func (n Node) dependsOnCopy() []string {
	out := make([]string, len(n.DependsOn))
	copy(out, n.DependsOn)
	return out
}
