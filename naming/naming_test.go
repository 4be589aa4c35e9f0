package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/witforge/witforge/errors"
)

func TestToKebabCase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"MyProcess", "my-process"},
		{"snake_case_name", "snake-case-name"},
		{"already", "already"},
		{"HTTPServer", "h-t-t-p-server"},
		{"a", "a"},
		{"A", "a"},
		{"ValueTwo", "value-two"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToKebabCase(tc.in), "ToKebabCase(%q)", tc.in)
	}
}

func TestToPascalCase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"my-process", "MyProcess"},
		{"single", "Single"},
		{"a-b-c", "ABC"},
		{"%record", "Record"},
		{"--double", "Double"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToPascalCase(tc.in), "ToPascalCase(%q)", tc.in)
	}
}

func TestToSnakeAndCamelCase(t *testing.T) {
	assert.Equal(t, "my_field_name", ToSnakeCase("my-field-name"))
	assert.Equal(t, "record", ToSnakeCase("%record"))
	assert.Equal(t, "myFieldName", ToCamelCase("my-field-name"))
	assert.Equal(t, "", ToCamelCase(""))
}

// Round-trip law: kebab(pascal(s)) == s for kebab identifiers without
// leading/trailing or consecutive hyphens.
func TestKebabPascalRoundTrip(t *testing.T) {
	for _, s := range []string{
		"my-process", "value", "level-one", "a-b-c", "nested-inner-type",
	} {
		assert.Equal(t, s, ToKebabCase(ToPascalCase(s)), "round-trip %q", s)
	}
}

func TestToWitIdent(t *testing.T) {
	assert.Equal(t, "%record", ToWitIdent("record"))
	assert.Equal(t, "%string", ToWitIdent("string"))
	assert.Equal(t, "%world", ToWitIdent("world"))
	assert.Equal(t, "my-type", ToWitIdent("my-type"))
	assert.Equal(t, "recording", ToWitIdent("recording"))
}

func TestStripLeadingUnderscore(t *testing.T) {
	got, stripped := StripLeadingUnderscore("_unused")
	assert.Equal(t, "unused", got)
	assert.True(t, stripped)

	got, stripped = StripLeadingUnderscore("used")
	assert.Equal(t, "used", got)
	assert.False(t, stripped)
}

func TestValidateName(t *testing.T) {
	// Digits are rejected anywhere in the identifier.
	err := ValidateName("field1", "Field")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNamingViolation))
	assert.Contains(t, err.Error(), "field1")
	assert.Contains(t, err.Error(), "Field")

	// "stream" is rejected case-insensitively.
	err = ValidateName("DataStream", "Struct")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DataStream")
	assert.Contains(t, err.Error(), "stream")

	// Hints carry the suggested fix.
	assert.NotEmpty(t, errors.GetAllHints(err))

	assert.NoError(t, ValidateName("perfectly_fine", "Parameter"))
	assert.NoError(t, ValidateName("Simple", "Struct"))
}
