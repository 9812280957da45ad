package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoUnpackSpreadsSliceAcrossPositionalArgs(t *testing.T) {
	join := func(a, b string) (string, error) {
		return a + "|" + b, nil
	}
	handler := AutoUnpack(join)

	out, err := handler(context.Background(), []any{[]any{"A", "B"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A|B", out)
}

func TestAutoUnpackLeavesSingleArgFunctionsAlone(t *testing.T) {
	double := func(s string) (string, error) {
		return s + s, nil
	}
	handler := AutoUnpack(double)

	out, err := handler(context.Background(), []any{"x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "xx", out)
}

func TestAutoUnpackFlattensOneLevelWhenDirectUnpackDoesNotFit(t *testing.T) {
	threeArg := func(a, b, c string) (string, error) {
		return a + b + c, nil
	}
	handler := AutoUnpack(threeArg)

	// [[x, y], z] doesn't directly unpack to 3 args at the top level
	// (it's 2 elements), so one level of flattening is required.
	out, err := handler(context.Background(), []any{[]any{[]any{"x", "y"}, "z"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "xyz", out)
}

func TestAutoUnpackPassesContextThrough(t *testing.T) {
	type ctxKey struct{}
	withCtx := func(ctx context.Context) (string, error) {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return v, nil
		}
		return "", nil
	}
	handler := AutoUnpack(withCtx)

	ctx := context.WithValue(context.Background(), ctxKey{}, "present")
	out, err := handler(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "present", out)
}

func TestAutoUnpackVariadic(t *testing.T) {
	sum := func(nums ...int) (int, error) {
		total := 0
		for _, n := range nums {
			total += n
		}
		return total, nil
	}
	handler := AutoUnpack(sum)

	out, err := handler(context.Background(), []any{[]any{1, 2, 3}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, out)
}
