// Package template implements the message syntax used by l10n resource
// files: static text interleaved with `{path | formatter:arg | ...}`
// placeholders, optionally carrying a `op:value?true:false` conditional
// whose branches are themselves templates.
package template

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

///////////////////////////////////////////////////////////////////////////////
// AST DEFINITIONS
///////////////////////////////////////////////////////////////////////////////

// Node is the interface for all AST nodes.
type Node interface {
	eval(st *evalState) (string, error)
}

// TextNode represents a static text segment.
type TextNode struct {
	Text string
}

func (t *TextNode) eval(_ *evalState) (string, error) {
	return t.Text, nil
}

// Formatter represents a single formatter in the chain.
type Formatter struct {
	Name string
	Arg  string
}

// Conditional represents a ternary condition attached to a placeholder.
// The false branch is the default branch: it is taken whenever the
// condition does not hold.
type Conditional struct {
	Op        string // "eq", "gt", "lt"
	TestValue string
	True      AST
	False     AST
}

// PlaceholderNode represents: {path | formatter:arg | ...}
type PlaceholderNode struct {
	Path       string
	Formatters []Formatter
	Cond       *Conditional // optional
}

func (p *PlaceholderNode) eval(st *evalState) (string, error) {
	value, ok := st.lookup(p.Path)
	if !ok {
		return "", fmt.Errorf("value not found: %s", p.Path)
	}

	var err error
	for _, f := range p.Formatters {
		value, err = applyFormatter(value, f.Name, f.Arg)
		if err != nil {
			return "", err
		}
	}

	if p.Cond != nil {
		hold, err := compareValues(value, p.Cond.Op, p.Cond.TestValue)
		if err != nil {
			return "", err
		}
		if hold {
			return p.Cond.True.eval(st)
		}
		st.diag(Diagnostic{Kind: DiagDefaultBranch, Name: p.Path})
		return p.Cond.False.eval(st)
	}

	return fmt.Sprint(value), nil
}

// AST is a whole parsed template.
type AST []Node

func (t AST) eval(st *evalState) (string, error) {
	var buf bytes.Buffer
	for _, node := range t {
		s, err := node.eval(st)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}

// Format renders the template with the given arguments. Non-fatal
// observations (a supplied argument no placeholder consumed, a conditional
// taking its default branch) are reported as diagnostics, not errors.
func (t AST) Format(args map[string]any) (string, []Diagnostic, error) {
	st := &evalState{args: args, used: make(map[string]bool, len(args))}
	text, err := t.eval(st)
	if err != nil {
		return "", nil, err
	}

	names := make([]string, 0, len(args))
	for name := range args {
		if !st.used[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		st.diags = append(st.diags, Diagnostic{Kind: DiagUnusedArgument, Name: name})
	}
	return text, st.diags, nil
}

// Variables returns the sorted argument names the template reads, selector
// keys included.
func (t AST) Variables() []string {
	set := make(map[string]struct{})
	t.walk(func(p *PlaceholderNode) {
		set[rootSegment(p.Path)] = struct{}{}
	})
	return sorted(set)
}

// SelectorKeys returns the sorted argument names used as conditional
// selectors.
func (t AST) SelectorKeys() []string {
	set := make(map[string]struct{})
	t.walk(func(p *PlaceholderNode) {
		if p.Cond != nil {
			set[rootSegment(p.Path)] = struct{}{}
		}
	})
	return sorted(set)
}

// Formatters returns the sorted formatter names the template references.
func (t AST) Formatters() []string {
	set := make(map[string]struct{})
	t.walk(func(p *PlaceholderNode) {
		for _, f := range p.Formatters {
			set[f.Name] = struct{}{}
		}
	})
	return sorted(set)
}

func (t AST) walk(fn func(*PlaceholderNode)) {
	for _, node := range t {
		ph, ok := node.(*PlaceholderNode)
		if !ok {
			continue
		}
		fn(ph)
		if ph.Cond != nil {
			ph.Cond.True.walk(fn)
			ph.Cond.False.walk(fn)
		}
	}
}

func rootSegment(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

///////////////////////////////////////////////////////////////////////////////
// DIAGNOSTICS
///////////////////////////////////////////////////////////////////////////////

// DiagnosticKind classifies a non-fatal formatting observation.
type DiagnosticKind int

const (
	// DiagUnusedArgument: an argument was supplied but no placeholder read it.
	DiagUnusedArgument DiagnosticKind = iota
	// DiagDefaultBranch: a conditional fell through to its default branch.
	DiagDefaultBranch
)

// Diagnostic is a non-fatal observation emitted while formatting.
type Diagnostic struct {
	Kind DiagnosticKind
	Name string // argument name or selector path
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagUnusedArgument:
		return fmt.Sprintf("unused argument %q", d.Name)
	case DiagDefaultBranch:
		return fmt.Sprintf("conditional on %q fell through to default branch", d.Name)
	default:
		return fmt.Sprintf("unknown diagnostic %q", d.Name)
	}
}

type evalState struct {
	args  map[string]any
	used  map[string]bool
	diags []Diagnostic
}

func (st *evalState) diag(d Diagnostic) {
	st.diags = append(st.diags, d)
}

func (st *evalState) lookup(path string) (any, bool) {
	v, ok := getValueByPath(st.args, path)
	if ok {
		st.used[rootSegment(path)] = true
	}
	return v, ok
}

///////////////////////////////////////////////////////////////////////////////
// PARSER
///////////////////////////////////////////////////////////////////////////////

// Parse parses a template into an AST. Parsing is strict: unbalanced braces
// and malformed placeholders are errors, since resources are validated at
// build time rather than patched over at render time.
func Parse(tpl string) (AST, error) {
	if err := checkBraces(tpl); err != nil {
		return nil, err
	}

	runes := []rune(tpl)
	n := len(runes)

	var nodes AST
	var buf bytes.Buffer

	i := 0
	for i < n {
		if runes[i] != '{' {
			buf.WriteRune(runes[i])
			i++
			continue
		}

		if buf.Len() > 0 {
			nodes = append(nodes, &TextNode{Text: buf.String()})
			buf.Reset()
		}

		// placeholder, nested braces allowed inside conditional branches
		depth := 1
		j := i + 1
		for j < n && depth > 0 {
			switch runes[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}

		raw := string(runes[i+1 : j-1])
		i = j

		ph, err := parsePlaceholder(raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, ph)
	}

	if buf.Len() > 0 {
		nodes = append(nodes, &TextNode{Text: buf.String()})
	}

	return nodes, nil
}

// parsePlaceholder parses the expression inside `{ ... }`.
func parsePlaceholder(expr string) (*PlaceholderNode, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty placeholder expression")
	}

	parts := splitTop(expr, '|')

	ph := &PlaceholderNode{
		Path: strings.TrimSpace(parts[0]),
	}
	if ph.Path == "" {
		return nil, errors.New("placeholder has empty path")
	}

	for i := 1; i < len(parts); i++ {
		seg := strings.TrimSpace(parts[i])
		if seg == "" {
			return nil, errors.New("empty formatter segment")
		}

		if strings.Contains(seg, "?") {
			cond, err := parseConditional(seg)
			if err != nil {
				return nil, err
			}
			ph.Cond = cond
			continue
		}

		name, arg := parseFormatterSegment(seg)
		if name == "" {
			return nil, errors.Errorf("empty formatter name in segment %q", seg)
		}
		ph.Formatters = append(ph.Formatters, Formatter{
			Name: name,
			Arg:  arg,
		})
	}

	return ph, nil
}

// splitTop splits on sep but not inside nested braces.
func splitTop(s string, sep rune) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// parseFormatterSegment parses "number:2" etc.
func parseFormatterSegment(seg string) (name, arg string) {
	ff := strings.SplitN(seg, ":", 2)
	name = strings.TrimSpace(ff[0])
	if len(ff) > 1 {
		arg = strings.TrimSpace(ff[1])
	}
	return
}

// parseConditional parses "eq:0?No items:{count} items".
func parseConditional(expr string) (*Conditional, error) {
	q := strings.SplitN(expr, "?", 2)
	if len(q) != 2 {
		return nil, errors.Errorf("invalid conditional: %s", expr)
	}
	condPart := q[0]
	tf := strings.SplitN(q[1], ":", 2)
	if len(tf) != 2 {
		return nil, errors.Errorf("invalid conditional: %s", expr)
	}

	condKV := strings.SplitN(condPart, ":", 2)
	if len(condKV) != 2 {
		return nil, errors.Errorf("invalid condition: %s", condPart)
	}

	op := strings.TrimSpace(condKV[0])
	switch op {
	case "eq", "gt", "lt":
	default:
		return nil, errors.Errorf("unknown conditional operator: %s", op)
	}

	trueExpr := strings.TrimSpace(tf[0])
	falseExpr := strings.TrimSpace(tf[1])
	if trueExpr == "" || falseExpr == "" {
		return nil, errors.New("invalid conditional: true/false branch must not be empty")
	}

	trueAST, err := Parse(trueExpr)
	if err != nil {
		return nil, err
	}
	falseAST, err := Parse(falseExpr)
	if err != nil {
		return nil, err
	}

	return &Conditional{
		Op:        op,
		TestValue: strings.TrimSpace(condKV[1]),
		True:      trueAST,
		False:     falseAST,
	}, nil
}

// checkBraces checks that all '{' and '}' are balanced.
func checkBraces(tpl string) error {
	depth := 0
	firstOpen := -1

	for i, r := range tpl {
		switch r {
		case '{':
			if depth == 0 {
				firstOpen = i
			}
			depth++
		case '}':
			if depth == 0 {
				return errors.Errorf("extra closing '}' at position %d", i)
			}
			depth--
		}
	}

	if depth != 0 {
		return errors.Errorf("unclosed placeholder starting at position %d", firstOpen)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// VALUE RESOLUTION
///////////////////////////////////////////////////////////////////////////////

func getValueByPath(args map[string]any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	var current any = args

	for _, seg := range segs {
		switch c := current.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			current = v
		default:
			r := reflect.ValueOf(c)
			if r.Kind() == reflect.Ptr {
				r = r.Elem()
			}
			if r.Kind() != reflect.Struct {
				return nil, false
			}
			f := r.FieldByNameFunc(func(name string) bool {
				return strings.EqualFold(name, seg)
			})
			if !f.IsValid() {
				return nil, false
			}
			current = f.Interface()
		}
	}
	return current, true
}
