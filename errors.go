package l10n

import (
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// CONFIGURATION ERRORS: fatal, abort initialization
///////////////////////////////////////////////////////////////////////////////

// CycleError reports a fallback chain that revisits a locale.
type CycleError struct {
	Path []LocaleID // visited locales, last one closes the loop
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("infinite fallback loop detected: (%s)", joinLocales(e.Path, " -> "))
}

// DuplicateMainError reports a locale declared as main more than once.
type DuplicateMainError struct {
	Locale LocaleID
}

func (e *DuplicateMainError) Error() string {
	return fmt.Sprintf("main locale duplicate: %s", e.Locale)
}

// EmptyLocalesError reports an empty locale declaration list.
type EmptyLocalesError struct{}

func (e *EmptyLocalesError) Error() string {
	return "no locales declared"
}

///////////////////////////////////////////////////////////////////////////////
// RESOURCE ERRORS: fatal at catalog and bundle build time
///////////////////////////////////////////////////////////////////////////////

// ParseError reports a malformed resource file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// GlobalNamedResourceError reports a named resource directly under the
// resource root, where only unnamed resources are allowed.
type GlobalNamedResourceError struct {
	Path string
}

func (e *GlobalNamedResourceError) Error() string {
	return fmt.Sprintf("named resource %q cannot be global, prefix the file name with '_'", e.Path)
}

// MissingLocaleDirsError reports mandatory locales without a resource
// directory.
type MissingLocaleDirsError struct {
	Locales []LocaleID
}

func (e *MissingLocaleDirsError) Error() string {
	noun := "directories"
	if len(e.Locales) == 1 {
		noun = "directory"
	}
	return fmt.Sprintf("missing mandatory locale %s: %s", noun, joinLocales(e.Locales, ", "))
}

// DuplicateMessageError reports one message id defined by two resources of
// the same scope within a merged bundle. Resources of different scopes
// shadow each other instead.
type DuplicateMessageError struct {
	ID    string
	Paths []string
}

func (e *DuplicateMessageError) Error() string {
	return fmt.Sprintf("duplicate message %q defined by %s", e.ID, strings.Join(e.Paths, " and "))
}

///////////////////////////////////////////////////////////////////////////////
// RUNTIME RESOLUTION ERRORS: recoverable, local to one call
///////////////////////////////////////////////////////////////////////////////

// ResourceNotFoundError reports a named resource absent from one locale.
// The runtime translator treats it as a miss and keeps walking the chain.
type ResourceNotFoundError struct {
	Resource string
	Locale   LocaleID
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource %q does not exist for locale %q", e.Resource, e.Locale)
}

// LocaleNotSupportedError reports a requested locale that is not a main
// locale of the graph.
type LocaleNotSupportedError struct {
	Locale string
}

func (e *LocaleNotSupportedError) Error() string {
	return fmt.Sprintf("locale %q not supported", e.Locale)
}

// MessageNotFoundError reports a message absent from every locale in the
// requested locale's fallback chain.
type MessageNotFoundError struct {
	Locale   LocaleID
	Resource string
	Key      string
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("message %q not found in resource %q for locale %q or any fallback", e.Key, e.Resource, e.Locale)
}

// FormatError reports a failed render of a resolved message.
type FormatError struct {
	Locale   LocaleID
	Resource string
	Key      string
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %q from resource %q for locale %q: %v", e.Key, e.Resource, e.Locale, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// lookup misses inside one bundle, recoverable while walking a chain

type messageNotExistsError struct {
	id     string
	locale LocaleID
}

func (e *messageNotExistsError) Error() string {
	return fmt.Sprintf("message id %q does not exist for locale %q", e.id, e.locale)
}

type attributeNotExistsError struct {
	id        string
	attribute string
	locale    LocaleID
}

func (e *attributeNotExistsError) Error() string {
	return fmt.Sprintf("attribute %q does not exist on message %q for locale %q", e.attribute, e.id, e.locale)
}

type valueNotExistsError struct {
	id     string
	locale LocaleID
}

func (e *valueNotExistsError) Error() string {
	return fmt.Sprintf("message %q has no value for locale %q", e.id, e.locale)
}

func joinLocales(locales []LocaleID, sep string) string {
	parts := make([]string, len(locales))
	for i, l := range locales {
		parts[i] = string(l)
	}
	return strings.Join(parts, sep)
}
