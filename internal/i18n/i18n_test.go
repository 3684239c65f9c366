package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestDefaultBundle_Locales(t *testing.T) {
	require.Equal(t, []string{"en-US", "id-ID"}, Default().Locales())
	require.True(t, Default().HasLocale("id-ID"))
	require.False(t, Default().HasLocale("fr-FR"))
}

func TestLocalizer_Translates(t *testing.T) {
	en := New("en-US")
	id := New("id-ID")

	require.Equal(t, "URL cannot be empty.", en.T("validation.empty"))
	require.Equal(t, "URL tidak boleh kosong.", id.T("validation.empty"))
	require.Equal(t, "Menghasilkan... (3s)", id.T("ui.generating", 3))
	require.Equal(t, "README result (2.5s)", en.T("ui.result_timed", 2.5))
}

func TestLocalizer_FallsBackToBase(t *testing.T) {
	l := New("fr-FR")
	require.Equal(t, "en-US", l.Locale())
	require.Equal(t, "Copied!", l.T("copy.success"))

	require.Equal(t, "id-ID", New("id").Locale())
}

func TestLoadFromFS_Validation(t *testing.T) {
	t.Run("missing base locale", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/id-ID.yaml": {Data: []byte("locale: id-ID\nmessages:\n  a: b\n")},
		}
		_, err := LoadFromFS(fsys)
		require.Error(t, err)
	})

	t.Run("locale must match file name", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/en-US.yaml": {Data: []byte("locale: en-GB\nmessages:\n  a: b\n")},
		}
		_, err := LoadFromFS(fsys)
		require.ErrorContains(t, err, "must match file name")
	})

	t.Run("keys must exist in base", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/en-US.yaml": {Data: []byte("locale: en-US\nmessages:\n  a: b\n")},
			"locales/id-ID.yaml": {Data: []byte("locale: id-ID\nmessages:\n  c: d\n")},
		}
		_, err := LoadFromFS(fsys)
		require.ErrorContains(t, err, "missing from base locale")
	})
}

func TestEmbeddedCatalogs_SameKeys(t *testing.T) {
	b := Default()
	base := b.locales[BaseLocale]
	for _, locale := range b.Locales() {
		require.Len(t, b.locales[locale], len(base), "locale %s", locale)
	}
}
