// pkg/engine/schema_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("explicit defaults win", func(t *testing.T) {
		schema := Schema{
			"timeout":    {Kind: KindInteger, Default: 10},
			"user_agent": {Kind: KindString, Default: "agent/1.0"},
		}
		defaults := DefaultConfig(schema)
		require.Equal(t, 10, defaults["timeout"])
		require.Equal(t, "agent/1.0", defaults["user_agent"])
	})

	t.Run("zero values per kind", func(t *testing.T) {
		schema := Schema{
			"name":    {Kind: KindString},
			"count":   {Kind: KindInteger},
			"ratio":   {Kind: KindNumber},
			"enabled": {Kind: KindBoolean},
			"items":   {Kind: KindArray},
			"extra":   {Kind: KindObject},
		}
		defaults := DefaultConfig(schema)
		require.Equal(t, "", defaults["name"])
		require.Equal(t, 0, defaults["count"])
		require.Equal(t, 0, defaults["ratio"])
		require.Equal(t, false, defaults["enabled"])
		require.Equal(t, []any{}, defaults["items"])
		require.Equal(t, map[string]any{}, defaults["extra"])
	})

	t.Run("nested object schemas are derived recursively", func(t *testing.T) {
		schema := Schema{
			"platforms": {
				Kind: KindObject,
				Fields: Schema{
					"url":     {Kind: KindString, Default: "https://example.com/{}"},
					"retries": {Kind: KindInteger},
				},
			},
		}
		defaults := DefaultConfig(schema)
		nested, ok := defaults["platforms"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "https://example.com/{}", nested["url"])
		require.Equal(t, 0, nested["retries"])
	})

	t.Run("empty schema yields empty map", func(t *testing.T) {
		require.Empty(t, DefaultConfig(Schema{}))
		require.Empty(t, DefaultConfig(nil))
	})
}

func TestSchemaValidateConfig(t *testing.T) {
	schema := Schema{
		"timeout":  {Kind: KindInteger, Required: true},
		"optional": {Kind: KindString},
	}

	t.Run("all required present", func(t *testing.T) {
		_, ok := schema.ValidateConfig(map[string]any{"timeout": 5})
		require.True(t, ok)
	})

	t.Run("missing required field is named", func(t *testing.T) {
		missing, ok := schema.ValidateConfig(map[string]any{"optional": "x"})
		require.False(t, ok)
		require.Equal(t, "timeout", missing)
	})

	t.Run("no required fields accepts anything", func(t *testing.T) {
		_, ok := Schema{"a": {Kind: KindString}}.ValidateConfig(map[string]any{})
		require.True(t, ok)
	})
}
