package witgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witforge/witforge/errors"
)

func TestRustTypeToWitScalars(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"i8", "s8"},
		{"u8", "u8"},
		{"i16", "s16"},
		{"u16", "u16"},
		{"i32", "s32"},
		{"u32", "u32"},
		{"i64", "s64"},
		{"u64", "u64"},
		{"usize", "u64"},
		{"isize", "s64"},
		{"f32", "f32"},
		{"f64", "f64"},
		{"bool", "bool"},
		{"char", "char"},
		{"String", "string"},
		{"str", "string"},
		{"&str", "string"},
		{"Address", "address"},
		{"std::string::String", "string"},
	}
	for _, tc := range cases {
		used := map[string]struct{}{}
		got, err := RustTypeToWit(tc.in, used)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Empty(t, used, "%s should not record custom types", tc.in)
	}
}

func TestRustTypeToWitComposites(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Vec<u8>", "list<u8>"},
		{"Vec<Vec<String>>", "list<list<string>>"},
		{"Option<String>", "option<string>"},
		{"Option<Vec<u64>>", "option<list<u64>>"},
		{"[u8]", "list<u8>"},
		{"[u8; 32]", "list<u8>"},
		{"(u64, bool)", "tuple<u64, bool>"},
		{"(Vec<u8>, (u32, bool))", "tuple<list<u8>, tuple<u32, bool>>"},
		{"()", "_"},
		{"&mut Vec<String>", "list<string>"},
		{"&'a String", "string"},
	}
	for _, tc := range cases {
		got, err := RustTypeToWit(tc.in, map[string]struct{}{})
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestRustTypeToWitResult(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Result<(), ()>", "result"},
		{"Result<String, ()>", "result<string>"},
		{"Result<(), String>", "result<_, string>"},
		{"Result<String, String>", "result<string, string>"},
		{"Result<Vec<u8>, ChatError>", "result<list<u8>, chat-error>"},
	}
	for _, tc := range cases {
		got, err := RustTypeToWit(tc.in, map[string]struct{}{})
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := RustTypeToWit("Result<String>", map[string]struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedType))
}

func TestRustTypeToWitCustomTypes(t *testing.T) {
	used := map[string]struct{}{}
	got, err := RustTypeToWit("Vec<ChatMessage>", used)
	require.NoError(t, err)
	assert.Equal(t, "list<chat-message>", got)
	assert.Contains(t, used, "ChatMessage")

	// reserved grammar keywords are escaped
	used = map[string]struct{}{}
	got, err = RustTypeToWit("Record", used)
	require.NoError(t, err)
	assert.Equal(t, "%record", got)
}

func TestRustTypeToWitRejections(t *testing.T) {
	cases := []string{
		"HashMap<String, u64>",
		"BTreeMap<String, u64>",
		"HashSet<String>",
		"Box<String>",
	}
	for _, in := range cases {
		_, err := RustTypeToWit(in, map[string]struct{}{})
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, errors.ErrUnsupportedType), in)
	}

	// identifiers that cannot survive the kebab round trip
	_, err := RustTypeToWit("Sha256Hash", map[string]struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNamingViolation))

	_, err = RustTypeToWit("DataStream", map[string]struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNamingViolation))
}
