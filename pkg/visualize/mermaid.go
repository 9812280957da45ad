// Package visualize renders a compiled Plan as a Mermaid flowchart or a
// plain ASCII listing, for debugging and documentation — never consulted
// by the compiler or the substrate adapters themselves.
package visualize

import (
	"fmt"
	"strings"

	"github.com/smilemakc/taskgraph/internal/compiler"
)

// Mermaid renders plan as a top-to-bottom Mermaid flowchart: one box per
// ExecuteNode step, edges from each node's dependencies, and a final box
// for the ExtractOne/ExtractSinks projection.
func Mermaid(plan compiler.Plan) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	var joinNodes []string

	for _, step := range plan.Steps {
		switch step.Kind {
		case compiler.StepExecuteNode:
			sb.WriteString(fmt.Sprintf("    %s[%q]\n", mermaidID(step.NodeID), nodeLabel(step)))
			for _, dep := range step.DependsOn {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(dep), mermaidID(step.NodeID)))
			}
			if len(step.DependsOn) > 1 {
				joinNodes = append(joinNodes, step.NodeID)
			}

		case compiler.StepExtractOne:
			sb.WriteString("    result((result))\n")
			sb.WriteString(fmt.Sprintf("    %s --> result\n", mermaidID(step.NodeID)))

		case compiler.StepExtractSinks:
			sb.WriteString("    result((result))\n")
			for _, id := range step.SinkNodeIDs {
				sb.WriteString(fmt.Sprintf("    %s --> result\n", mermaidID(id)))
			}
		}
	}

	// A node with more than one dependency is a fan-in point (UsesJoin on
	// the source workflow would report true); style it distinctly so a
	// reader can spot joins at a glance.
	for _, id := range joinNodes {
		sb.WriteString(fmt.Sprintf("    class %s join\n", mermaidID(id)))
	}
	if len(joinNodes) > 0 {
		sb.WriteString("    classDef join fill:#f9e79f,stroke:#b7950b\n")
	}

	return sb.String()
}

func nodeLabel(step compiler.Step) string {
	return fmt.Sprintf("%s: %s", step.NodeID, step.TaskName)
}

// mermaidID sanitizes a node id into a safe Mermaid identifier; node ids
// are user-chosen and may contain characters Mermaid treats specially.
func mermaidID(nodeID string) string {
	replacer := strings.NewReplacer(
		"-", "_",
		".", "_",
		" ", "_",
	)
	return "n_" + replacer.Replace(nodeID)
}

// ASCII renders plan as a plain, ordered listing of its steps — useful in
// terminals and logs where Mermaid syntax isn't rendered.
func ASCII(plan compiler.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "plan %q (%d steps)\n", plan.WorkflowName, len(plan.Steps))

	for i, step := range plan.Steps {
		switch step.Kind {
		case compiler.StepInitContext:
			fmt.Fprintf(&sb, "  %2d. init_context\n", i)

		case compiler.StepExecuteNode:
			deps := "-"
			if len(step.DependsOn) > 0 {
				deps = strings.Join(step.DependsOn, ", ")
			}
			fmt.Fprintf(&sb, "  %2d. execute_node  %s <- %s  (depends_on: %s)\n", i, step.NodeID, step.TaskName, deps)

		case compiler.StepExtractOne:
			fmt.Fprintf(&sb, "  %2d. extract_one    %s\n", i, step.NodeID)

		case compiler.StepExtractSinks:
			fmt.Fprintf(&sb, "  %2d. extract_sinks  [%s]\n", i, strings.Join(step.SinkNodeIDs, ", "))
		}
	}

	return sb.String()
}
