package l10n

import (
	"github.com/lifei6671/l10n/template"
)

// Message binds a resource, a key and a set of default arguments to the
// translator, so call sites carry one value instead of repeating the
// triple. Per-call arguments override the bound ones.
type Message struct {
	l10n     *L10n
	resource string
	key      string
	args     map[string]any
}

// Message builds a bound message. args may be nil.
func (l *L10n) Message(resource, key string, args map[string]any) *Message {
	return &Message{l10n: l, resource: resource, key: key, args: args}
}

// TryTranslate resolves the message for the locale, overriding bound
// arguments with overrides where both define a name.
func (m *Message) TryTranslate(locale string, overrides map[string]any) (string, []template.Diagnostic, error) {
	return m.l10n.TryTranslate(locale, m.resource, m.key, mergeArgs(m.args, overrides))
}

// Translate is the infallible variant of TryTranslate.
func (m *Message) Translate(locale string, overrides map[string]any) string {
	text, _, err := m.TryTranslate(locale, overrides)
	if err != nil {
		return UnexpectedMessage
	}
	return text
}

func mergeArgs(bound, overrides map[string]any) map[string]any {
	if len(overrides) == 0 {
		return bound
	}
	if len(bound) == 0 {
		return overrides
	}
	merged := make(map[string]any, len(bound)+len(overrides))
	for name, v := range bound {
		merged[name] = v
	}
	for name, v := range overrides {
		merged[name] = v
	}
	return merged
}
