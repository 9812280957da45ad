// Package tasks provides convenience wrappers for turning plain Go
// functions into the TaskHandler shape the substrate invokes — an
// opt-in ergonomic layer, never required by the core. AutoUnpack is
// ported from the reference implementation's inspect.signature-based
// "auto unpack/flatten" behaviour: when a node's dependency payload
// arrives as a slice (the multi-parent join case), the wrapped function's
// arity decides whether that slice gets spread across positional
// parameters instead of passed through as one argument.
package tasks

import (
	"context"
	"fmt"
	"reflect"

	"github.com/smilemakc/taskgraph/internal/substrate"
)

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errType = reflect.TypeOf((*error)(nil)).Elem()

type arity struct {
	takesContext  bool
	minPositional int
	maxPositional int // meaningless when hasVarargs is true
	hasVarargs    bool
}

func inspectArity(rt reflect.Type) arity {
	n := rt.NumIn()
	takesContext := n > 0 && rt.In(0).Implements(ctxType)

	start := 0
	if takesContext {
		start = 1
	}

	hasVarargs := rt.IsVariadic()
	positional := n - start
	if hasVarargs {
		positional--
	}

	return arity{
		takesContext:  takesContext,
		minPositional: positional,
		maxPositional: positional,
		hasVarargs:    hasVarargs,
	}
}

func (a arity) fits(count int) bool {
	if a.hasVarargs {
		return count >= a.minPositional
	}
	return count >= a.minPositional && count <= a.maxPositional
}

func toSlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func flattenOneLevel(seq []any) []any {
	out := make([]any, 0, len(seq))
	for _, v := range seq {
		if inner, ok := toSlice(v); ok {
			out = append(out, inner...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// AutoUnpack wraps fn as a substrate.TaskHandler. fn may optionally take a
// leading context.Context, any number of positional parameters (including
// a trailing variadic one), and returns either a single value or a
// (value, error) pair.
//
// When the incoming call's first positional argument is a slice or array
// and fn's arity can accept more than one positional argument, AutoUnpack
// tries to spread that sequence across fn's parameters: first a direct
// unpack, then (if that doesn't fit fn's arity) one level of flattening.
// If neither fits, the original arguments are passed through unchanged.
func AutoUnpack(fn any) substrate.TaskHandler {
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		panic("tasks.AutoUnpack: fn must be a function")
	}
	a := inspectArity(rt)

	return func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		callArgs := args
		if len(args) > 0 {
			if seq, ok := toSlice(args[0]); ok && (a.hasVarargs || a.maxPositional >= 2) {
				candidate := append(append([]any{}, seq...), args[1:]...)
				if a.fits(len(candidate)) {
					callArgs = candidate
				} else {
					flattened := flattenOneLevel(seq)
					candidate2 := append(append([]any{}, flattened...), args[1:]...)
					if a.fits(len(candidate2)) {
						callArgs = candidate2
					}
				}
			}
		}
		return invoke(rv, rt, a, ctx, callArgs)
	}
}

func invoke(rv reflect.Value, rt reflect.Type, a arity, ctx context.Context, args []any) (any, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	if a.takesContext {
		in = append(in, reflect.ValueOf(ctx))
	}

	for i, arg := range args {
		paramIndex := i
		if a.takesContext {
			paramIndex++
		}
		paramType := paramTypeAt(rt, paramIndex)
		in = append(in, coerce(arg, paramType))
	}

	out := rv.Call(in)
	return splitResult(out)
}

func paramTypeAt(rt reflect.Type, i int) reflect.Type {
	if rt.IsVariadic() && i >= rt.NumIn()-1 {
		return rt.In(rt.NumIn() - 1).Elem()
	}
	return rt.In(i)
}

func coerce(arg any, want reflect.Type) reflect.Value {
	if arg == nil {
		return reflect.Zero(want)
	}
	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(want) {
		return rv
	}
	if rv.Type().ConvertibleTo(want) {
		return rv.Convert(want)
	}
	// Leave type mismatches to panic inside reflect.Call with a clear
	// message rather than silently miscoercing.
	return rv
}

func splitResult(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errType) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	case 2:
		var err error
		if !out[1].IsNil() {
			err = out[1].Interface().(error)
		}
		return out[0].Interface(), err
	default:
		return nil, fmt.Errorf("tasks.AutoUnpack: function has unsupported return arity %d", len(out))
	}
}
