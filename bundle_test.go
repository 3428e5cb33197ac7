package l10n

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestTree(t *testing.T) *L10n {
	t.Helper()
	l, err := Load(filepath.Join("testdata", "l10n"), testLocales(t))
	require.NoError(t, err)
	return l
}

func TestBundleMerge(t *testing.T) {
	l := loadTestTree(t)

	t.Run("LocaleShadowsGlobal", func(t *testing.T) {
		// en/_shared.yaml redefines brand-name over _brand.yaml
		b, err := l.Bundle("en", "home")
		require.NoError(t, err)

		pattern, err := b.Pattern("brand-name")
		require.NoError(t, err)
		text, _, err := pattern.Format(nil)
		require.NoError(t, err)
		assert.Equal(t, "Acme", text)
	})

	t.Run("SubtreeUnnamedApplies", func(t *testing.T) {
		b, err := l.Bundle("en", "settings/account")
		require.NoError(t, err)

		pattern, err := b.Pattern("support-email")
		require.NoError(t, err)
		text, _, err := pattern.Format(nil)
		require.NoError(t, err)
		assert.Equal(t, "help@acme.test", text)

		// root-level unnamed resources reach the subtree too
		_, err = b.Pattern("brand-name")
		assert.NoError(t, err)
	})

	t.Run("SubtreeDoesNotLeakUpward", func(t *testing.T) {
		b, err := l.Bundle("en", "home")
		require.NoError(t, err)
		_, err = b.Pattern("support-email")
		assert.Error(t, err)
	})

	t.Run("ResourceNotFound", func(t *testing.T) {
		_, err := l.Bundle("en-CA", "home")
		var notFound *ResourceNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "home", notFound.Resource)
		assert.Equal(t, LocaleID("en-CA"), notFound.Locale)
	})

	t.Run("DuplicateWithinScope", func(t *testing.T) {
		locales := declare(t, [2]string{"en", ""})
		dup, err := Load(filepath.Join("testdata", "dup"), locales)
		require.NoError(t, err)

		_, err = dup.Bundle("en", "page")
		var dupErr *DuplicateMessageError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "clash", dupErr.ID)
		assert.Len(t, dupErr.Paths, 2)
	})
}

func TestBundlePattern(t *testing.T) {
	l := loadTestTree(t)
	b, err := l.Bundle("en", "home")
	require.NoError(t, err)

	t.Run("Value", func(t *testing.T) {
		_, err := b.Pattern("signin")
		assert.NoError(t, err)
	})

	t.Run("Attribute", func(t *testing.T) {
		pattern, err := b.Pattern("signin.tooltip")
		require.NoError(t, err)
		text, _, err := pattern.Format(map[string]any{"provider": "Acme ID"})
		require.NoError(t, err)
		assert.Equal(t, "Sign in with your Acme ID account", text)
	})

	t.Run("UnknownMessage", func(t *testing.T) {
		_, err := b.Pattern("no-such-id")
		assert.Error(t, err)
	})

	t.Run("UnknownAttribute", func(t *testing.T) {
		_, err := b.Pattern("signin.no-such-attr")
		assert.Error(t, err)
	})
}

func TestBundleCache(t *testing.T) {
	t.Run("SecondRequestIsCached", func(t *testing.T) {
		l := loadTestTree(t)

		b1, err := l.Bundle("en", "home")
		require.NoError(t, err)
		b2, err := l.Bundle("en", "home")
		require.NoError(t, err)
		assert.Same(t, b1, b2)
		assert.Equal(t, int64(1), l.bundles.builds.Load())
	})

	t.Run("ConcurrentRequestsBuildOnce", func(t *testing.T) {
		l := loadTestTree(t)

		const workers = 32
		bundles := make([]*Bundle, workers)
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func(i int) {
				defer wg.Done()
				b, err := l.Bundle("en", "home")
				assert.NoError(t, err)
				bundles[i] = b
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int64(1), l.bundles.builds.Load())
		for i := 1; i < workers; i++ {
			assert.Same(t, bundles[0], bundles[i])
		}
	})
}

func TestScopeDirs(t *testing.T) {
	assert.Equal(t, []string{""}, scopeDirs("home"))
	assert.Equal(t, []string{"", "settings"}, scopeDirs("settings/account"))
	assert.Equal(t, []string{"", "a", "a/b"}, scopeDirs("a/b/c"))
}
