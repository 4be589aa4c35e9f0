package wit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrimitiveOrBuiltin(t *testing.T) {
	for _, p := range []string{
		"s8", "u8", "s16", "u16", "s32", "u32", "s64", "u64",
		"f32", "f64", "bool", "char", "string", "address",
		"list<u8>", "option<string>", "result<string, string>", "result",
		"tuple<u32, bool>",
	} {
		assert.True(t, IsPrimitiveOrBuiltin(p), "%q should be builtin", p)
	}

	for _, c := range []string{"my-type", "chat-message", "listing"} {
		assert.False(t, IsPrimitiveOrBuiltin(c), "%q should be custom", c)
	}
}

func TestSplitGenericArgs(t *testing.T) {
	assert.Equal(t, []string{"u64", "bool"}, SplitGenericArgs("u64, bool"))
	assert.Equal(t,
		[]string{"tuple<u64, bool>", "string"},
		SplitGenericArgs("tuple<u64, bool>, string"))
	assert.Equal(t,
		[]string{"list<tuple<string, u32>>", "option<my-type>"},
		SplitGenericArgs("list<tuple<string, u32>>, option<my-type>"))
	assert.Empty(t, SplitGenericArgs(""))
}

func TestResultParts(t *testing.T) {
	cases := []struct {
		in, ok, err string
	}{
		{"result", "_", "_"},
		{"result<string>", "string", "_"},
		{"result<_, my-error>", "_", "my-error"},
		{"result<string, my-error>", "string", "my-error"},
		{"result<tuple<u64, bool>, string>", "tuple<u64, bool>", "string"},
	}
	for _, tc := range cases {
		okType, errType, isResult := ResultParts(tc.in)
		assert.True(t, isResult, "%q", tc.in)
		assert.Equal(t, tc.ok, okType, "%q ok type", tc.in)
		assert.Equal(t, tc.err, errType, "%q err type", tc.in)
	}

	_, _, isResult := ResultParts("list<string>")
	assert.False(t, isResult)
}

func TestTupleParts(t *testing.T) {
	assert.Equal(t, []string{"u64", "bool"}, TupleParts("tuple<u64, bool>"))
	assert.Equal(t,
		[]string{"list<u8>", "option<string>"},
		TupleParts("tuple<list<u8>, option<string>>"))
	assert.Nil(t, TupleParts("option<string>"))
}
