package tasks

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/smilemakc/taskgraph/internal/substrate"
)

// Predicate compiles expression once, at task-construction time rather than
// per call, since a Predicate node's expression never changes across a
// workflow's many runs. It returns a TaskHandler that evaluates it against
// the call: the first positional argument (the dependency payload, when
// there is one) is exposed to the expression as "in", all positional
// arguments as "args", and the keyword arguments as "kwargs".
func Predicate(expression string) (substrate.TaskHandler, error) {
	program, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("tasks.Predicate: compile %q: %w", expression, err)
	}

	return func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		env := map[string]any{"args": args, "kwargs": kwargs}
		if len(args) > 0 {
			if m, ok := args[0].(map[string]any); ok {
				env["in"] = m
			} else {
				env["in"] = args[0]
			}
		}

		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("tasks.Predicate: evaluate %q: %w", expression, err)
		}
		return result, nil
	}, nil
}
