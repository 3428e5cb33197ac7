package l10n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declare(t *testing.T, pairs ...[2]string) *Locales {
	t.Helper()
	entries := make([]LocaleEntry, 0, len(pairs))
	for _, p := range pairs {
		entry, err := NewLocaleEntry(p[0], p[1])
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	locales, err := NewLocales(entries)
	require.NoError(t, err)
	return locales
}

func TestParseLocale(t *testing.T) {
	t.Run("ParseLocale_Normalizes", func(t *testing.T) {
		id, err := ParseLocale("en-gb")
		require.NoError(t, err)
		assert.Equal(t, LocaleID("en-GB"), id)
	})
	t.Run("ParseLocale_Invalid", func(t *testing.T) {
		_, err := ParseLocale("not a locale")
		require.Error(t, err)
	})
}

func TestNewLocales(t *testing.T) {
	t.Run("NewLocales_Empty", func(t *testing.T) {
		_, err := NewLocales(nil)
		var empty *EmptyLocalesError
		require.ErrorAs(t, err, &empty)
	})

	t.Run("NewLocales_DuplicateMain", func(t *testing.T) {
		entries := []LocaleEntry{
			{Main: "en-CA"},
			{Main: "en-CA", Fallback: "en"},
		}
		_, err := NewLocales(entries)
		var dup *DuplicateMainError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, LocaleID("en-CA"), dup.Locale)
	})

	t.Run("NewLocales_SelfLoop", func(t *testing.T) {
		_, err := NewLocales([]LocaleEntry{{Main: "en", Fallback: "en"}})
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, "infinite fallback loop detected: (en -> en)", cycle.Error())
	})

	t.Run("NewLocales_LongLoop", func(t *testing.T) {
		_, err := NewLocales([]LocaleEntry{
			{Main: "en"},
			{Main: "en-GB", Fallback: "en-CA"},
			{Main: "en-IE", Fallback: "en-GB"},
			{Main: "en-CA", Fallback: "en-IE"},
		})
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, "infinite fallback loop detected: (en-GB -> en-CA -> en-IE -> en-GB)", cycle.Error())
	})
}

func TestLocaleSets(t *testing.T) {
	locales := declare(t,
		[2]string{"en", ""},
		[2]string{"en-GB", "en"},
		[2]string{"en-CA", "en-GB"},
		[2]string{"fr-CA", "fr"},
	)

	t.Run("MandatoryLocales", func(t *testing.T) {
		// fr is mandatory even though it is only a fallback target
		assert.Equal(t, []LocaleID{"en", "fr"}, locales.MandatoryLocales())
	})

	t.Run("AllLocales", func(t *testing.T) {
		assert.Equal(t, []LocaleID{"en", "en-CA", "en-GB", "fr", "fr-CA"}, locales.AllLocales())
	})

	t.Run("MainLocales", func(t *testing.T) {
		assert.Equal(t, []LocaleID{"en", "en-CA", "en-GB", "fr-CA"}, locales.MainLocales())
	})

	t.Run("IsMandatory", func(t *testing.T) {
		assert.True(t, locales.IsMandatory("en"))
		assert.True(t, locales.IsMandatory("fr"))
		assert.False(t, locales.IsMandatory("en-GB"))
		assert.False(t, locales.IsMandatory("en-CA"))
	})

	t.Run("Contains", func(t *testing.T) {
		assert.True(t, locales.Contains("fr"))
		assert.False(t, locales.Contains("de"))
	})
}

func TestResolutionRoute(t *testing.T) {
	locales := declare(t,
		[2]string{"en", ""},
		[2]string{"en-GB", "en"},
		[2]string{"en-CA", "en-GB"},
		[2]string{"en-IE", "en-GB"},
		[2]string{"fr-CA", "fr"},
	)

	cases := []struct {
		locale LocaleID
		want   []LocaleID
	}{
		{"en", []LocaleID{"en"}},
		{"en-GB", []LocaleID{"en-GB", "en"}},
		{"en-CA", []LocaleID{"en-CA", "en-GB", "en"}},
		{"en-IE", []LocaleID{"en-IE", "en-GB", "en"}},
		{"fr-CA", []LocaleID{"fr-CA", "fr"}},
		{"fr", nil}, // not a main locale
		{"de", nil}, // not declared
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, locales.ResolutionRoute(tc.locale), "route of %s", tc.locale)
	}
}

func TestTerminal(t *testing.T) {
	locales := declare(t,
		[2]string{"en", ""},
		[2]string{"en-GB", "en"},
		[2]string{"en-CA", "en-GB"},
		[2]string{"fr-CA", "fr"},
	)

	terminal, ok := locales.Terminal("en-CA")
	require.True(t, ok)
	assert.Equal(t, LocaleID("en"), terminal)

	// a fallback-only locale is its own terminal
	terminal, ok = locales.Terminal("fr")
	require.True(t, ok)
	assert.Equal(t, LocaleID("fr"), terminal)

	_, ok = locales.Terminal("de")
	assert.False(t, ok)
}

func TestDiscoverLocales(t *testing.T) {
	t.Run("RegionFallsBackToLanguage", func(t *testing.T) {
		locales, err := DiscoverLocales([]LocaleID{"en", "en-CA", "en-GB", "fr", "fr-CA", "de"})
		require.NoError(t, err)
		assert.Equal(t, []LocaleID{"de", "en", "fr"}, locales.MandatoryLocales())
		assert.Equal(t, []LocaleID{"en-CA", "en"}, locales.ResolutionRoute("en-CA"))
	})

	t.Run("NoAncestorIsOwnTerminal", func(t *testing.T) {
		locales, err := DiscoverLocales([]LocaleID{"fr-CA", "de"})
		require.NoError(t, err)
		assert.Equal(t, []LocaleID{"de", "fr-CA"}, locales.MandatoryLocales())
		assert.Equal(t, []LocaleID{"fr-CA"}, locales.ResolutionRoute("fr-CA"))
	})

	t.Run("RightmostSubtagDropsFirst", func(t *testing.T) {
		// sr-Latn-RS tries sr-Latn before sr
		locales, err := DiscoverLocales([]LocaleID{"sr", "sr-Latn", "sr-Latn-RS"})
		require.NoError(t, err)
		assert.Equal(t, []LocaleID{"sr-Latn-RS", "sr-Latn", "sr"}, locales.ResolutionRoute("sr-Latn-RS"))
		assert.Equal(t, []LocaleID{"sr"}, locales.MandatoryLocales())
	})

	t.Run("SkipsMissingIntermediate", func(t *testing.T) {
		// without sr-Latn, sr-Latn-RS links straight to sr
		locales, err := DiscoverLocales([]LocaleID{"sr", "sr-Latn-RS"})
		require.NoError(t, err)
		assert.Equal(t, []LocaleID{"sr-Latn-RS", "sr"}, locales.ResolutionRoute("sr-Latn-RS"))
	})

	t.Run("VariantThenRegion", func(t *testing.T) {
		locales, err := DiscoverLocales([]LocaleID{"en", "en-GB", "en-GB-oxendict"})
		require.NoError(t, err)
		assert.Equal(t, []LocaleID{"en-GB-oxendict", "en-GB", "en"}, locales.ResolutionRoute("en-GB-oxendict"))
	})
}
