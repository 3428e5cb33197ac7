package l10n

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/lifei6671/l10n/template"
)

// unnamedKey scopes unnamed resources to one directory of one locale.
// Resources named "settings/account" see the unnamed resources of "" and
// "settings".
type unnamedKey struct {
	dir    string
	locale LocaleID
}

// Catalog holds every parsed resource, classified by scope. It is built
// once and read-only afterwards; bundles borrow resources from it and never
// mutate them.
type Catalog struct {
	global  []*template.Resource
	unnamed map[unnamedKey][]*template.Resource
	named   map[string]map[LocaleID]*template.Resource
	visited []LocaleID // locale directories found under the root
}

// ParseDir walks the resource root: files directly under the root are
// global unnamed resources (a leading underscore is required there),
// immediate subdirectories are locale directories. When locales is non-nil,
// directories outside the graph are skipped and every mandatory locale must
// have a directory; when nil, every directory must parse as a locale and
// the result feeds discovery.
func ParseDir(dir string, locales *Locales) (*Catalog, error) {
	c := &Catalog{
		unnamed: make(map[unnamedKey][]*template.Resource),
		named:   make(map[string]map[LocaleID]*template.Resource),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read resource root %q", dir)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		if !entry.IsDir() {
			if !template.IsResourceFile(entry.Name()) {
				continue
			}
			if entry.Name()[0] != '_' {
				return nil, &GlobalNamedResourceError{Path: entryPath}
			}
			res, err := parseResourceFile(entryPath)
			if err != nil {
				return nil, err
			}
			c.global = append(c.global, res)
			continue
		}

		locale, err := ParseLocale(entry.Name())
		if locales != nil {
			if err != nil || !locales.Contains(locale) {
				continue
			}
		} else if err != nil {
			return nil, errors.Wrapf(err, "directory %q is not a locale", entry.Name())
		}
		c.visited = append(c.visited, locale)

		if err := c.parseLocaleDir(locale, entryPath, ""); err != nil {
			return nil, err
		}
	}

	if locales != nil {
		var missing []LocaleID
		found := make(map[LocaleID]struct{}, len(c.visited))
		for _, l := range c.visited {
			found[l] = struct{}{}
		}
		for _, l := range locales.MandatoryLocales() {
			if _, ok := found[l]; !ok {
				missing = append(missing, l)
			}
		}
		if len(missing) > 0 {
			return nil, &MissingLocaleDirsError{Locales: missing}
		}
	}

	return c, nil
}

// parseLocaleDir classifies the files of one locale directory, recursing
// into subdirectories. rel is the slash-joined path below the locale
// directory and prefixes named resources.
func (c *Catalog) parseLocaleDir(locale LocaleID, dirPath, rel string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return errors.Wrapf(err, "read locale directory %q", dirPath)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			if err := c.parseLocaleDir(locale, entryPath, path.Join(rel, entry.Name())); err != nil {
				return err
			}
			continue
		}
		if !template.IsResourceFile(entry.Name()) {
			continue
		}

		res, err := parseResourceFile(entryPath)
		if err != nil {
			return err
		}

		if entry.Name()[0] == '_' {
			key := unnamedKey{dir: rel, locale: locale}
			c.unnamed[key] = append(c.unnamed[key], res)
			continue
		}

		name := path.Join(rel, template.ResourceName(entry.Name()))
		if c.named[name] == nil {
			c.named[name] = make(map[LocaleID]*template.Resource)
		}
		c.named[name][locale] = res
	}

	return nil
}

func parseResourceFile(p string) (*template.Resource, error) {
	src, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "read resource %q", p)
	}
	res, err := template.ParseResource(p, src)
	if err != nil {
		return nil, &ParseError{Path: p, Err: err}
	}
	return res, nil
}

// Named returns the named resource for one locale.
func (c *Catalog) Named(name string, locale LocaleID) (*template.Resource, bool) {
	res, ok := c.named[name][locale]
	return res, ok
}

// ResourceNames returns the sorted names of all named resources.
func (c *Catalog) ResourceNames() []string {
	names := make([]string, 0, len(c.named))
	for name := range c.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resources calls fn for every resource in the catalog.
func (c *Catalog) Resources(fn func(*template.Resource)) {
	for _, res := range c.global {
		fn(res)
	}
	for _, key := range c.unnamedKeys() {
		for _, res := range c.unnamed[key] {
			fn(res)
		}
	}
	for _, name := range c.ResourceNames() {
		byLocale := c.named[name]
		for _, locale := range c.namedLocales(name) {
			fn(byLocale[locale])
		}
	}
}

func sortUnnamedKeys(keys []unnamedKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dir != keys[j].dir {
			return keys[i].dir < keys[j].dir
		}
		return keys[i].locale < keys[j].locale
	})
}

func (c *Catalog) unnamedKeys() []unnamedKey {
	keys := make([]unnamedKey, 0, len(c.unnamed))
	for key := range c.unnamed {
		keys = append(keys, key)
	}
	sortUnnamedKeys(keys)
	return keys
}

func (c *Catalog) namedLocales(name string) []LocaleID {
	set := make(map[LocaleID]struct{}, len(c.named[name]))
	for locale := range c.named[name] {
		set[locale] = struct{}{}
	}
	return sortedLocales(set)
}
