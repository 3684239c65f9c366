package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type level string

const (
	levelDebug level = "debug"
	levelInfo  level = "info"
)

type locale string

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(map[string]level{"debug": levelDebug, "info": levelInfo}, levelInfo)

	tests := []struct {
		input string
		want  level
	}{
		{"debug", levelDebug},
		{"DEBUG", levelDebug},
		{"  Debug  ", levelDebug},
		{"info", levelInfo},
		{"verbose", levelInfo},
		{"", levelInfo},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, n.Normalize(tt.input), tt.input)
	}
}

func TestNormalizer_UnderscoreMatchesHyphen(t *testing.T) {
	n := NewNormalizer(map[string]locale{"en-US": "en-US", "id-ID": "id-ID"}, "en-US")

	require.Equal(t, locale("id-ID"), n.Normalize("id_ID"))
	require.Equal(t, locale("id-ID"), n.Normalize("ID-id"))
	require.Equal(t, []string{"en-us", "id-id"}, n.ValidKeys())
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := NewNormalizer(map[string]level{"debug": levelDebug, "info": levelInfo}, levelInfo)

	got, err := n.NormalizeWithError("Debug")
	require.NoError(t, err)
	require.Equal(t, levelDebug, got)

	got, err = n.NormalizeWithError("  ")
	require.NoError(t, err)
	require.Equal(t, levelInfo, got)

	_, err = n.NormalizeWithError("trace")
	require.Error(t, err)
	require.Contains(t, err.Error(), "[debug info]")
}

func TestNormalizer_ValidKeysIsACopy(t *testing.T) {
	n := NewNormalizer(map[string]level{"debug": levelDebug}, levelDebug)
	keys := n.ValidKeys()
	keys[0] = "mutated"
	require.Equal(t, []string{"debug"}, n.ValidKeys())
}
