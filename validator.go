package l10n

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/lifei6671/l10n/template"
)

// Usage is one declared message call site, fed to the validator by the
// call-site discovery tooling. An empty Locales list means the usage must
// resolve in every mandatory locale.
type Usage struct {
	Resource string   `yaml:"resource"`
	Key      string   `yaml:"key"` // "id" or "id.attribute"
	Args     []string `yaml:"args"`
	Locales  []string `yaml:"locales"`
	// Partial marks an argument list known to be incomplete at the call
	// site; only the argument check is skipped for it.
	Partial bool `yaml:"partial"`
}

// FindingKind classifies a validation finding.
type FindingKind int

const (
	MissingResource FindingKind = iota
	MissingMessage
	MissingAttribute
	MissingValue
	MissingArguments
	UnknownFormatter
	UnknownLocale
)

func (k FindingKind) String() string {
	switch k {
	case MissingResource:
		return "missing-resource"
	case MissingMessage:
		return "missing-message"
	case MissingAttribute:
		return "missing-attribute"
	case MissingValue:
		return "missing-value"
	case MissingArguments:
		return "missing-arguments"
	case UnknownFormatter:
		return "unknown-formatter"
	case UnknownLocale:
		return "unknown-locale"
	default:
		return "unknown"
	}
}

// Severity separates hard failures from staged-rollout warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Finding is one validation result. Findings are values, not panics: a
// single broken usage never hides the rest of the sweep.
type Finding struct {
	Kind     FindingKind
	Severity Severity
	Locale   LocaleID
	Resource string
	Key      string
	Names    []string // missing argument names or the unknown name
}

func (f Finding) Error() string {
	switch f.Kind {
	case MissingResource:
		return fmt.Sprintf("missing resource %q for locale %q", f.Resource, f.Locale)
	case MissingMessage:
		return fmt.Sprintf("missing message %q in resource %q for locale %q", f.Key, f.Resource, f.Locale)
	case MissingAttribute:
		return fmt.Sprintf("missing attribute %q in resource %q for locale %q", f.Key, f.Resource, f.Locale)
	case MissingValue:
		return fmt.Sprintf("missing value for message %q in resource %q for locale %q", f.Key, f.Resource, f.Locale)
	case MissingArguments:
		return fmt.Sprintf("missing arguments: %q for resource %q and key %q", strings.Join(f.Names, `", "`), f.Resource, f.Key)
	case UnknownFormatter:
		return fmt.Sprintf("unknown formatter %q referenced by resources", f.Names[0])
	case UnknownLocale:
		return fmt.Sprintf("unknown locale %q declared by a usage of resource %q", f.Names[0], f.Resource)
	default:
		return "unknown finding"
	}
}

// Report aggregates every finding of one validation pass. The same input
// always yields the same report, independent of execution order.
type Report struct {
	findings []Finding
}

// Findings returns all findings, warnings included, in stable order.
func (r *Report) Findings() []Finding { return r.findings }

// HasErrors reports whether any finding is error severity.
func (r *Report) HasErrors() bool {
	for _, f := range r.findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns the error-severity findings as one aggregated error, or nil.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.findings {
		if f.Severity == SeverityError {
			result = multierror.Append(result, f)
		}
	}
	return result.ErrorOrNil()
}

// ValidateOptions tunes the pass.
type ValidateOptions struct {
	// AllowIncomplete downgrades missing resource/message/attribute/value
	// findings to warnings, for staged rollout of new locales. Argument and
	// formatter findings stay errors.
	AllowIncomplete bool
	// Formatters is the set of formatter names known to be registered at
	// runtime. Nil means the engine's current registry.
	Formatters []string
}

// Validate cross-checks the declared usages against the catalog and the
// locale graph: the named resource, message and attribute must exist in
// every mandatory locale the usage targets, the supplied argument names
// must cover the variables and selector keys the message body reads, and
// every formatter referenced by any resource must be known. The pass never
// stops at the first finding. Resource errors surfaced while building a
// bundle (duplicate ids) abort the pass, findings do not.
func (l *L10n) Validate(usages []Usage, opts ValidateOptions) (*Report, error) {
	known := opts.Formatters
	if known == nil {
		known = template.Formatters()
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, name := range known {
		knownSet[name] = struct{}{}
	}

	v := &validation{
		l10n:         l,
		incompleteAs: SeverityError,
		seen:         make(map[string]struct{}),
		requiredArgs: make(map[BundleKey]map[string][]string),
	}
	if opts.AllowIncomplete {
		v.incompleteAs = SeverityWarning
	}

	mandatory := l.locales.MandatoryLocales()

	// every named resource must cover every mandatory locale
	for _, name := range l.catalog.ResourceNames() {
		for _, locale := range mandatory {
			if _, ok := l.catalog.Named(name, locale); !ok {
				v.add(Finding{Kind: MissingResource, Severity: v.incompleteAs, Locale: locale, Resource: name})
			}
		}
	}

	for _, usage := range usages {
		targets := v.targetLocales(usage, mandatory)
		for _, locale := range targets {
			if err := v.checkUsage(usage, locale); err != nil {
				return nil, err
			}
		}
	}

	// every formatter referenced anywhere must be registered
	l.catalog.Resources(func(res *template.Resource) {
		res.Patterns(func(_ string, ast template.AST) {
			for _, name := range ast.Formatters() {
				if _, ok := knownSet[name]; !ok {
					v.add(Finding{Kind: UnknownFormatter, Severity: SeverityError, Names: []string{name}})
				}
			}
		})
	})

	sort.Slice(v.findings, func(i, j int) bool {
		return findingLess(v.findings[i], v.findings[j])
	})
	return &Report{findings: v.findings}, nil
}

type validation struct {
	l10n         *L10n
	incompleteAs Severity
	findings     []Finding
	seen         map[string]struct{}
	requiredArgs map[BundleKey]map[string][]string
}

func (v *validation) add(f Finding) {
	id := fmt.Sprintf("%d|%s|%s|%s|%s", f.Kind, f.Locale, f.Resource, f.Key, strings.Join(f.Names, ","))
	if _, dup := v.seen[id]; dup {
		return
	}
	v.seen[id] = struct{}{}
	v.findings = append(v.findings, f)
}

// targetLocales expands a usage's declared locales to the mandatory
// terminals they fall back to; those are the only locales guaranteed never
// to fall further.
func (v *validation) targetLocales(usage Usage, mandatory []LocaleID) []LocaleID {
	if len(usage.Locales) == 0 {
		return mandatory
	}

	set := make(map[LocaleID]struct{}, len(usage.Locales))
	for _, declared := range usage.Locales {
		lid, err := ParseLocale(declared)
		if err != nil {
			v.add(Finding{Kind: UnknownLocale, Severity: SeverityError, Resource: usage.Resource, Names: []string{declared}})
			continue
		}
		terminal, ok := v.l10n.locales.Terminal(lid)
		if !ok {
			v.add(Finding{Kind: UnknownLocale, Severity: SeverityError, Resource: usage.Resource, Names: []string{declared}})
			continue
		}
		set[terminal] = struct{}{}
	}
	return sortedLocales(set)
}

func (v *validation) checkUsage(usage Usage, locale LocaleID) error {
	bundle, err := v.l10n.Bundle(locale, usage.Resource)
	if err != nil {
		if _, miss := err.(*ResourceNotFoundError); miss {
			v.add(Finding{Kind: MissingResource, Severity: v.incompleteAs, Locale: locale, Resource: usage.Resource})
			return nil
		}
		return err
	}

	pattern, err := bundle.Pattern(usage.Key)
	if err != nil {
		kind := MissingMessage
		switch err.(type) {
		case *attributeNotExistsError:
			kind = MissingAttribute
		case *valueNotExistsError:
			kind = MissingValue
		}
		v.add(Finding{Kind: kind, Severity: v.incompleteAs, Locale: locale, Resource: usage.Resource, Key: usage.Key})
		return nil
	}

	if usage.Partial {
		return nil
	}

	supplied := make(map[string]struct{}, len(usage.Args))
	for _, name := range usage.Args {
		supplied[name] = struct{}{}
	}

	var missing []string
	for _, name := range v.required(BundleKey{Locale: locale, Resource: usage.Resource}, usage.Key, pattern) {
		if _, ok := supplied[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		v.add(Finding{Kind: MissingArguments, Severity: SeverityError, Locale: locale, Resource: usage.Resource, Key: usage.Key, Names: missing})
	}
	return nil
}

// required memoizes the variable set per (bundle, key); it is a pure
// function of the resource tree.
func (v *validation) required(key BundleKey, messageKey string, pattern template.AST) []string {
	byKey := v.requiredArgs[key]
	if byKey == nil {
		byKey = make(map[string][]string)
		v.requiredArgs[key] = byKey
	}
	if names, ok := byKey[messageKey]; ok {
		return names
	}
	names := pattern.Variables() // selector keys are placeholder paths too
	byKey[messageKey] = names
	return names
}

func findingLess(a, b Finding) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Locale != b.Locale {
		return a.Locale < b.Locale
	}
	if a.Resource != b.Resource {
		return a.Resource < b.Resource
	}
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return strings.Join(a.Names, ",") < strings.Join(b.Names, ",")
}
