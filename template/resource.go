package template

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Message is a parsed message entry: an optional value pattern plus any
// number of named attribute patterns.
type Message struct {
	ID         string
	value      AST
	hasValue   bool
	attributes map[string]AST
}

// Value returns the message's main pattern. A message declared with
// attributes only has no value.
func (m *Message) Value() (AST, bool) {
	return m.value, m.hasValue
}

// Attribute returns the named attribute pattern.
func (m *Message) Attribute(name string) (AST, bool) {
	ast, ok := m.attributes[name]
	return ast, ok
}

// Attributes returns the sorted attribute names.
func (m *Message) Attributes() []string {
	names := make([]string, 0, len(m.attributes))
	for name := range m.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resource is one parsed resource file.
type Resource struct {
	Path     string // source path, kept for error reporting
	messages map[string]*Message
}

// Message returns the message with the given id.
func (r *Resource) Message(id string) (*Message, bool) {
	m, ok := r.messages[id]
	return m, ok
}

// IDs returns the sorted message ids the resource defines.
func (r *Resource) IDs() []string {
	ids := make([]string, 0, len(r.messages))
	for id := range r.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Patterns calls fn for every pattern in the resource, values and
// attributes alike.
func (r *Resource) Patterns(fn func(id string, ast AST)) {
	for _, id := range r.IDs() {
		m := r.messages[id]
		if m.hasValue {
			fn(id, m.value)
		}
		for _, attr := range m.Attributes() {
			fn(id+"."+attr, m.attributes[attr])
		}
	}
}

// A message entry is either a bare template string or a mapping with an
// optional value and attributes:
//
//	messages:
//	  welcome: "Welcome, {first-name}!"
//	  signin:
//	    value: "Sign in"
//	    attributes:
//	      tooltip: "Sign in with your {provider} account"
type messageEntry struct {
	Value      *string
	Attributes map[string]string
}

func (e *messageEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		e.Value = &s
		return nil
	case yaml.MappingNode:
		var full struct {
			Value      *string           `yaml:"value"`
			Attributes map[string]string `yaml:"attributes"`
		}
		if err := node.Decode(&full); err != nil {
			return err
		}
		e.Value = full.Value
		e.Attributes = full.Attributes
		return nil
	default:
		return errors.Errorf("line %d: message entry must be a string or a mapping", node.Line)
	}
}

type resourceFile struct {
	Messages map[string]messageEntry `yaml:"messages"`
}

// ParseResource parses a resource file body into a Resource. Every template
// in the file is parsed eagerly so malformed syntax fails the build instead
// of a later render.
func ParseResource(path string, src []byte) (*Resource, error) {
	var file resourceFile
	if err := yaml.Unmarshal(src, &file); err != nil {
		return nil, err
	}

	res := &Resource{
		Path:     path,
		messages: make(map[string]*Message, len(file.Messages)),
	}

	for id, entry := range file.Messages {
		if strings.ContainsRune(id, '.') {
			return nil, errors.Errorf("message id %q must not contain '.', declare an attribute instead", id)
		}
		msg := &Message{ID: id}
		if entry.Value != nil {
			ast, err := Parse(*entry.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "message %q", id)
			}
			msg.value = ast
			msg.hasValue = true
		}
		if len(entry.Attributes) > 0 {
			msg.attributes = make(map[string]AST, len(entry.Attributes))
			for name, tpl := range entry.Attributes {
				ast, err := Parse(tpl)
				if err != nil {
					return nil, errors.Wrapf(err, "message %q attribute %q", id, name)
				}
				msg.attributes[name] = ast
			}
		}
		if !msg.hasValue && len(msg.attributes) == 0 {
			return nil, errors.Errorf("message %q has neither value nor attributes", id)
		}
		res.messages[id] = msg
	}

	return res, nil
}

// resource file extensions recognised by the engine
var extensions = map[string]bool{".yaml": true, ".yml": true}

// IsResourceFile reports whether the file name has a resource extension.
func IsResourceFile(name string) bool {
	return extensions[extOf(name)]
}

// ResourceName strips the resource extension from a file name.
func ResourceName(name string) string {
	return strings.TrimSuffix(name, extOf(name))
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
