package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"template_id": "day",
		"date":        "2026-03-10",
		"actor":       "cli",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"actor":"cli","date":"2026-03-10","template_id":"day"}`, string(got))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	in := map[string]any{
		"seq":  int64(7),
		"kind": "switched",
		"tags": []any{"a", "b"},
		"ok":   true,
	}
	first, err := MarshalCanonical(in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(in)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + COMBINING ACUTE normalizes to the precomposed form.
	decomposed := "café"
	precomposed := "café"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_RejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(3.14)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)

	_, err = MarshalCanonical([]any{1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_Nested(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"after":  map[string]any{"template_id": "night", "date": "2026-03-10"},
		"seq":    int64(3),
		"before": map[string]any{"template_id": "day", "date": "2026-03-10"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"after":{"date":"2026-03-10","template_id":"night"},"before":{"date":"2026-03-10","template_id":"day"},"seq":3}`,
		string(got))
}
