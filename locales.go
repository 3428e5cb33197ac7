package l10n

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// LocaleID is a normalized Unicode language identifier such as "en-GB".
// Equality is exact on the normalized form.
type LocaleID string

// ParseLocale normalizes a locale identifier.
func ParseLocale(s string) (LocaleID, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", errors.Wrapf(err, "parse locale %q", s)
	}
	return LocaleID(tag.String()), nil
}

// LocaleEntry declares one locale and its optional fallback target.
type LocaleEntry struct {
	Main     LocaleID
	Fallback LocaleID // empty means no fallback
}

// NewLocaleEntry parses a main/fallback declaration. An empty fallback
// string declares a bare locale.
func NewLocaleEntry(main, fallback string) (LocaleEntry, error) {
	m, err := ParseLocale(main)
	if err != nil {
		return LocaleEntry{}, err
	}
	var f LocaleID
	if fallback != "" {
		if f, err = ParseLocale(fallback); err != nil {
			return LocaleEntry{}, err
		}
	}
	return LocaleEntry{Main: m, Fallback: f}, nil
}

// Locales is the immutable locale fallback graph: a forest where every
// locale has at most one fallback edge and every chain ends at a mandatory
// terminal. A locale that appears only as a fallback target is reachable
// for resolution but is not a requestable main locale.
type Locales struct {
	entries   []LocaleEntry
	index     map[LocaleID]int
	all       map[LocaleID]struct{}
	mandatory map[LocaleID]struct{}
}

// NewLocales builds the graph from an ordered declaration list, rejecting
// duplicate mains, fallback cycles and an empty list.
func NewLocales(entries []LocaleEntry) (*Locales, error) {
	if len(entries) == 0 {
		return nil, &EmptyLocalesError{}
	}

	l := &Locales{
		entries: entries,
		index:   make(map[LocaleID]int, len(entries)),
		all:     make(map[LocaleID]struct{}, len(entries)),
	}
	for i, e := range entries {
		if _, dup := l.index[e.Main]; dup {
			return nil, &DuplicateMainError{Locale: e.Main}
		}
		l.index[e.Main] = i
		l.all[e.Main] = struct{}{}
		if e.Fallback != "" {
			l.all[e.Fallback] = struct{}{}
		}
	}

	for _, e := range entries {
		visited := []LocaleID{e.Main}
		current := e
		for current.Fallback != "" {
			for _, seen := range visited {
				if seen == current.Fallback {
					return nil, &CycleError{Path: append(visited, current.Fallback)}
				}
			}
			visited = append(visited, current.Fallback)
			next, ok := l.index[current.Fallback]
			if !ok {
				break // fallback-only target, terminal by construction
			}
			current = l.entries[next]
		}
	}

	l.mandatory = make(map[LocaleID]struct{})
	for _, e := range entries {
		l.mandatory[l.terminalOf(e)] = struct{}{}
	}

	return l, nil
}

func (l *Locales) terminalOf(e LocaleEntry) LocaleID {
	for e.Fallback != "" {
		i, ok := l.index[e.Fallback]
		if !ok {
			return e.Fallback
		}
		e = l.entries[i]
	}
	return e.Main
}

// Contains reports whether the locale appears in the graph, as a main or a
// fallback target.
func (l *Locales) Contains(id LocaleID) bool {
	_, ok := l.all[id]
	return ok
}

// IsMandatory reports whether the locale is a chain terminal.
func (l *Locales) IsMandatory(id LocaleID) bool {
	_, ok := l.mandatory[id]
	return ok
}

// MandatoryLocales returns the sorted chain terminals. Every named resource
// a validated usage requires must exist in each of them.
func (l *Locales) MandatoryLocales() []LocaleID {
	return sortedLocales(l.mandatory)
}

// AllLocales returns every locale in the graph, sorted.
func (l *Locales) AllLocales() []LocaleID {
	return sortedLocales(l.all)
}

// MainLocales returns the requestable locales, sorted.
func (l *Locales) MainLocales() []LocaleID {
	main := make(map[LocaleID]struct{}, len(l.entries))
	for _, e := range l.entries {
		main[e.Main] = struct{}{}
	}
	return sortedLocales(main)
}

// ResolutionRoute returns the fallback chain starting at the given main
// locale, the locale itself first. It returns nil for locales that are not
// declared as main.
func (l *Locales) ResolutionRoute(id LocaleID) []LocaleID {
	i, ok := l.index[id]
	if !ok {
		return nil
	}

	route := []LocaleID{id}
	current := l.entries[i]
	for current.Fallback != "" {
		route = append(route, current.Fallback)
		next, ok := l.index[current.Fallback]
		if !ok {
			break
		}
		current = l.entries[next]
	}
	return route
}

// Terminal returns the mandatory locale the given locale ultimately falls
// back to. A fallback-only locale is its own terminal.
func (l *Locales) Terminal(id LocaleID) (LocaleID, bool) {
	if i, ok := l.index[id]; ok {
		return l.terminalOf(l.entries[i]), true
	}
	if _, ok := l.all[id]; ok {
		return id, true
	}
	return "", false
}

// DiscoverLocales infers a graph from locale identifiers found as resource
// directories. Each locale falls back to its nearest existing ancestor,
// dropping the rightmost subtag first ("en-Latn-GB" tries "en-Latn", then
// "en"); a locale with no existing ancestor is its own mandatory terminal.
func DiscoverLocales(ids []LocaleID) (*Locales, error) {
	present := make(map[LocaleID]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}

	entries := make([]LocaleEntry, 0, len(present))
	for _, id := range sortedLocales(present) {
		entry := LocaleEntry{Main: id}
		for _, ancestor := range ancestorsOf(id) {
			if _, ok := present[ancestor]; ok {
				entry.Fallback = ancestor
				break
			}
		}
		entries = append(entries, entry)
	}

	return NewLocales(entries)
}

// ancestorsOf lists truncations of the identifier, most specific first.
func ancestorsOf(id LocaleID) []LocaleID {
	var ancestors []LocaleID
	s := string(id)
	for {
		i := strings.LastIndexByte(s, '-')
		if i < 0 {
			return ancestors
		}
		s = s[:i]
		ancestors = append(ancestors, LocaleID(s))
	}
}

func sortedLocales(set map[LocaleID]struct{}) []LocaleID {
	out := make([]LocaleID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
