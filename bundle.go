package l10n

import (
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/lifei6671/l10n/template"
)

// BundleKey identifies one merged formatting context.
type BundleKey struct {
	Locale   LocaleID
	Resource string
}

// Bundle is the merged formatting context for one (locale, resource) pair:
// global unnamed resources, then the locale's unnamed resources from the
// root directory down to the resource's own directory, then the named
// resource itself. Later scopes shadow earlier ones.
type Bundle struct {
	key      BundleKey
	messages map[string]*template.Message
}

// Key returns the bundle's identity.
func (b *Bundle) Key() BundleKey { return b.key }

// Message returns the message with the given id.
func (b *Bundle) Message(id string) (*template.Message, bool) {
	m, ok := b.messages[id]
	return m, ok
}

// Pattern resolves a key of the form "id" or "id.attribute" to its pattern.
// Every returned error represents a miss the chain walk may recover from.
func (b *Bundle) Pattern(key string) (template.AST, error) {
	id, attribute, hasAttr := strings.Cut(key, ".")

	msg, ok := b.messages[id]
	if !ok {
		return nil, &messageNotExistsError{id: id, locale: b.key.Locale}
	}

	if hasAttr {
		ast, ok := msg.Attribute(attribute)
		if !ok {
			return nil, &attributeNotExistsError{id: id, attribute: attribute, locale: b.key.Locale}
		}
		return ast, nil
	}

	ast, ok := msg.Value()
	if !ok {
		return nil, &valueNotExistsError{id: id, locale: b.key.Locale}
	}
	return ast, nil
}

// bundleCache memoizes bundles per key with a single-flight fill path:
// concurrent requests for one key share a single construction, requests for
// unrelated keys never contend on it.
type bundleCache struct {
	mu      sync.RWMutex
	bundles map[BundleKey]*Bundle
	group   singleflight.Group
	builds  atomic.Int64
}

func newBundleCache() *bundleCache {
	return &bundleCache{bundles: make(map[BundleKey]*Bundle)}
}

func (bc *bundleCache) get(key BundleKey, build func() (*Bundle, error)) (*Bundle, error) {
	bc.mu.RLock()
	b, ok := bc.bundles[key]
	bc.mu.RUnlock()
	if ok {
		return b, nil
	}

	v, err, _ := bc.group.Do(string(key.Locale)+"\x00"+key.Resource, func() (any, error) {
		bc.mu.RLock()
		b, ok := bc.bundles[key]
		bc.mu.RUnlock()
		if ok {
			return b, nil
		}

		bc.builds.Add(1)
		b, err := build()
		if err != nil {
			return nil, err
		}

		bc.mu.Lock()
		bc.bundles[key] = b
		bc.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bundle), nil
}

// Bundle returns the merged formatting context for the pair, building it on
// first request and serving the cached value afterwards. It fails with a
// ResourceNotFoundError when the locale has no such named resource; the
// static validator rules that out ahead of time for mandatory locales, but
// intermediate chain hops may legitimately lack a resource.
func (l *L10n) Bundle(locale LocaleID, resource string) (*Bundle, error) {
	key := BundleKey{Locale: locale, Resource: resource}
	return l.bundles.get(key, func() (*Bundle, error) {
		return l.buildBundle(key)
	})
}

func (l *L10n) buildBundle(key BundleKey) (*Bundle, error) {
	named, ok := l.catalog.Named(key.Resource, key.Locale)
	if !ok {
		return nil, &ResourceNotFoundError{Resource: key.Resource, Locale: key.Locale}
	}

	b := &Bundle{
		key:      key,
		messages: make(map[string]*template.Message),
	}

	if err := b.merge(l.catalog.global); err != nil {
		return nil, err
	}
	for _, dir := range scopeDirs(key.Resource) {
		unnamed := l.catalog.unnamed[unnamedKey{dir: dir, locale: key.Locale}]
		if err := b.merge(unnamed); err != nil {
			return nil, err
		}
	}
	if err := b.merge([]*template.Resource{named}); err != nil {
		return nil, err
	}

	return b, nil
}

// merge adds one scope level. Ids already present from earlier scopes are
// shadowed; two resources within this scope defining one id is an error.
func (b *Bundle) merge(resources []*template.Resource) error {
	seen := make(map[string]string) // id -> defining path, this scope only
	for _, res := range resources {
		for _, id := range res.IDs() {
			if prev, dup := seen[id]; dup {
				return &DuplicateMessageError{ID: id, Paths: []string{prev, res.Path}}
			}
			seen[id] = res.Path
			msg, _ := res.Message(id)
			b.messages[id] = msg
		}
	}
	return nil
}

// scopeDirs lists the directories whose unnamed resources apply to a
// resource name, outermost first: "settings/account" sees "" and
// "settings".
func scopeDirs(resource string) []string {
	dirs := []string{""}
	prefix := ""
	for _, seg := range strings.Split(path.Dir(resource), "/") {
		if seg == "." || seg == "" {
			continue
		}
		prefix = path.Join(prefix, seg)
		dirs = append(dirs, prefix)
	}
	return dirs
}
