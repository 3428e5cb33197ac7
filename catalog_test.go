package l10n

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifei6671/l10n/template"
)

func testLocales(t *testing.T) *Locales {
	t.Helper()
	return declare(t,
		[2]string{"en", ""},
		[2]string{"en-GB", "en"},
		[2]string{"en-CA", "en-GB"},
		[2]string{"fr", ""},
	)
}

func TestParseDir(t *testing.T) {
	t.Run("FullTree", func(t *testing.T) {
		catalog, err := ParseDir(filepath.Join("testdata", "l10n"), testLocales(t))
		require.NoError(t, err)

		assert.Equal(t, []string{"home", "settings/account"}, catalog.ResourceNames())

		res, ok := catalog.Named("home", "en")
		require.True(t, ok)
		assert.Contains(t, res.IDs(), "welcome")

		res, ok = catalog.Named("settings/account", "fr")
		require.True(t, ok)
		assert.Contains(t, res.IDs(), "title")

		_, ok = catalog.Named("home", "de")
		assert.False(t, ok)

		var visited []string
		catalog.Resources(func(r *template.Resource) {
			visited = append(visited, r.Path)
		})
		// 1 global, 2 unnamed, 5 named
		assert.Len(t, visited, 8)
		assert.Equal(t, filepath.Join("testdata", "l10n", "_brand.yaml"), visited[0])
	})

	t.Run("SkipsUnknownDirectories", func(t *testing.T) {
		// only en and fr are declared, so en-GB stays unread
		locales := declare(t, [2]string{"en", ""}, [2]string{"fr", ""})
		catalog, err := ParseDir(filepath.Join("testdata", "l10n"), locales)
		require.NoError(t, err)

		_, ok := catalog.Named("home", "en-GB")
		assert.False(t, ok)
	})

	t.Run("GlobalNamedResource", func(t *testing.T) {
		_, err := ParseDir(filepath.Join("testdata", "globalnamed"), nil)
		var named *GlobalNamedResourceError
		require.ErrorAs(t, err, &named)
		assert.Equal(t, filepath.Join("testdata", "globalnamed", "home.yaml"), named.Path)
	})

	t.Run("MissingMandatoryDir", func(t *testing.T) {
		locales := declare(t, [2]string{"en", ""}, [2]string{"de", ""})
		_, err := ParseDir(filepath.Join("testdata", "l10n"), locales)
		var missing *MissingLocaleDirsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []LocaleID{"de"}, missing.Locales)
	})

	t.Run("MalformedResource", func(t *testing.T) {
		locales := declare(t, [2]string{"en", ""})
		_, err := ParseDir(filepath.Join("testdata", "bad"), locales)
		var parse *ParseError
		require.ErrorAs(t, err, &parse)
		assert.Equal(t, filepath.Join("testdata", "bad", "en", "broken.yaml"), parse.Path)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		_, err := ParseDir(filepath.Join("testdata", "no-such-dir"), nil)
		require.Error(t, err)
	})
}
