package l10n

import (
	"github.com/lifei6671/l10n/template"
)

// TryTranslate resolves and formats a message for the requested locale,
// walking the locale's fallback chain until a bundle contains the key.
// key is a message id, optionally suffixed with ".attribute". A resource or
// message missing from a non-terminal hop is not an error, only a reason to
// fall further back. Diagnostics carry the engine's non-fatal observations
// for the hop that produced the text.
func (l *L10n) TryTranslate(locale, resource, key string, args map[string]any) (string, []template.Diagnostic, error) {
	lid, err := ParseLocale(locale)
	if err != nil {
		return "", nil, &LocaleNotSupportedError{Locale: locale}
	}

	route := l.locales.ResolutionRoute(lid)
	if route == nil {
		return "", nil, &LocaleNotSupportedError{Locale: locale}
	}

	for _, hop := range route {
		bundle, err := l.Bundle(hop, resource)
		if err != nil {
			if _, miss := err.(*ResourceNotFoundError); miss {
				continue
			}
			return "", nil, err
		}

		pattern, err := bundle.Pattern(key)
		if err != nil {
			continue // recoverable miss, try the next hop
		}

		text, diags, err := pattern.Format(args)
		if err != nil {
			return "", nil, &FormatError{Locale: hop, Resource: resource, Key: key, Err: err}
		}
		return text, diags, nil
	}

	return "", nil, &MessageNotFoundError{Locale: lid, Resource: resource, Key: key}
}

// Translate is the infallible variant: any resolution or formatting failure
// yields the UnexpectedMessage placeholder so callers render a visible
// marker instead of crashing.
func (l *L10n) Translate(locale, resource, key string, args map[string]any) string {
	text, _, err := l.TryTranslate(locale, resource, key, args)
	if err != nil {
		return UnexpectedMessage
	}
	return text
}
