package compiler

// StepKind discriminates the four fixed step shapes a Plan can contain.
type StepKind string

const (
	StepInitContext  StepKind = "init_context"
	StepExecuteNode  StepKind = "execute_node"
	StepExtractOne   StepKind = "extract_one"
	StepExtractSinks StepKind = "extract_sinks"
)

// Step is one entry of a compiled Plan. Only the fields relevant to Kind are
// populated; the zero value of the others is never read. This flat shape
// (rather than one type per kind) is deliberate: a Step must serialize
// cleanly as a single substrate message payload (see the field tables this
// mirrors), and Go lacks tagged unions.
type Step struct {
	Kind StepKind

	// ExecuteNode fields.
	NodeID                   string
	TaskName                 string
	TaskArgs                 []any
	TaskKwargs               map[string]any
	DependsOn                []string
	ConsumeDependencyResults bool

	// ExtractOne reuses NodeID above.

	// ExtractSinks fields.
	SinkNodeIDs []string
}

// Plan is the ordered, substrate-ready sequence of steps a Compile call
// produces. It holds only the data needed to enqueue each step; it keeps no
// back-reference to the Workflow it was compiled from.
type Plan struct {
	WorkflowName string
	Steps        []Step
}

// ExecuteNodeIDs returns the node ids carried by this plan's ExecuteNode
// steps, in plan order.
func (p Plan) ExecuteNodeIDs() []string {
	var ids []string
	for _, s := range p.Steps {
		if s.Kind == StepExecuteNode {
			ids = append(ids, s.NodeID)
		}
	}
	return ids
}
