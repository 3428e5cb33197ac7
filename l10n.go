// Package l10n manages localized message resources organized by locale:
// a locale fallback graph, a resource catalog loaded from a directory tree,
// lazily built per-(locale, resource) formatting contexts, a runtime
// translator with graceful fallback, and a static validator that proves
// every declared message usage resolvable in every mandatory locale before
// the program runs.
package l10n

// UnexpectedMessage is the placeholder text the infallible translate
// entry points return when resolution or formatting fails.
const UnexpectedMessage = "Unexpected message"

// L10n ties the immutable locale graph and resource catalog to the bundle
// cache. Construct it once and share it; all methods are safe for
// concurrent use.
type L10n struct {
	locales *Locales
	catalog *Catalog
	bundles *bundleCache
}

// New wires an already built graph and catalog together. Completeness of
// mandatory locales against message usages is the static validator's job,
// not a construction-time check.
func New(locales *Locales, catalog *Catalog) *L10n {
	return &L10n{
		locales: locales,
		catalog: catalog,
		bundles: newBundleCache(),
	}
}

// Load parses the resource root and builds an L10n. With a nil graph the
// locale set is discovered from the directory names and fallback edges are
// inferred by subtag truncation.
func Load(dir string, locales *Locales) (*L10n, error) {
	catalog, err := ParseDir(dir, locales)
	if err != nil {
		return nil, err
	}
	if locales == nil {
		if locales, err = DiscoverLocales(catalog.visited); err != nil {
			return nil, err
		}
	}
	return New(locales, catalog), nil
}

// Locales returns the locale fallback graph.
func (l *L10n) Locales() *Locales { return l.locales }

// Catalog returns the resource catalog.
func (l *L10n) Catalog() *Catalog { return l.catalog }
