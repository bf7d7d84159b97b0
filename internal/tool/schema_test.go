package tool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"path":    {Type: TypeString},
			"mode":    {Type: TypeString, Enum: []string{"fast", "slow"}},
			"timeout": {Type: TypeInteger, Minimum: Float(1), Maximum: Float(600)},
			"verbose": {Type: TypeBoolean},
			"tags":    {Type: TypeArray, Items: &Schema{Type: TypeString}},
		},
		Required: []string{"path", "timeout"},
	}
}

func validationErr(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve
}

func TestValidate_Valid(t *testing.T) {
	err := testSchema().Validate(map[string]any{
		"path":    "a.txt",
		"timeout": float64(30),
		"verbose": true,
		"tags":    []any{"x", "y"},
		"mode":    "fast",
	})
	assert.NoError(t, err)
}

func TestValidate_UnknownFieldReportedFirst(t *testing.T) {
	err := testSchema().Validate(map[string]any{"zeta": 1, "alpha": 2})

	ve := validationErr(t, err)
	assert.Equal(t, "alpha", ve.Field)
	assert.Equal(t, "unknown field", ve.Reason)
}

func TestValidate_MissingRequiredInDeclaredOrder(t *testing.T) {
	err := testSchema().Validate(map[string]any{})

	assert.Equal(t, "path", validationErr(t, err).Field)
}

func TestValidate_NullRequiredCountsAsMissing(t *testing.T) {
	err := testSchema().Validate(map[string]any{"path": nil, "timeout": 1})

	ve := validationErr(t, err)
	assert.Equal(t, "path", ve.Field)
	assert.Contains(t, ve.Reason, "missing")
}

func TestValidate_TypeMismatch(t *testing.T) {
	err := testSchema().Validate(map[string]any{"path": 42, "timeout": 1})

	ve := validationErr(t, err)
	assert.Equal(t, "path", ve.Field)
	assert.Equal(t, "expected string, got number", ve.Reason)
}

func TestValidate_IntegerAndBounds(t *testing.T) {
	ve := validationErr(t, testSchema().Validate(map[string]any{"path": "a", "timeout": 1.5}))
	assert.Contains(t, ve.Reason, "must be an integer")

	ve = validationErr(t, testSchema().Validate(map[string]any{"path": "a", "timeout": 0}))
	assert.Contains(t, ve.Reason, "must be >= 1")

	ve = validationErr(t, testSchema().Validate(map[string]any{"path": "a", "timeout": 601}))
	assert.Contains(t, ve.Reason, "must be <= 600")
}

func TestValidate_EnumAndArrayItems(t *testing.T) {
	ve := validationErr(t, testSchema().Validate(map[string]any{"path": "a", "timeout": 1, "mode": "medium"}))
	assert.Equal(t, "mode", ve.Field)

	ve = validationErr(t, testSchema().Validate(map[string]any{"path": "a", "timeout": 1, "tags": []any{"ok", 3}}))
	assert.Equal(t, "tags[1]", ve.Field)
}

func TestValidate_NilSchemaAcceptsOnlyEmptyArgs(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(nil))
	assert.Error(t, s.Validate(map[string]any{"x": 1}))
}
