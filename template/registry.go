package template

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

///////////////////////////////////////////////////////////////////////////////
// FORMATTER REGISTRY
///////////////////////////////////////////////////////////////////////////////

var (
	formatterRegistry = map[string]FormatterFunc{}
	regMutex          sync.RWMutex
)

// FormatterFunc represents a user-defined or built-in formatter.
type FormatterFunc func(input any, arg string) (any, error)

// RegisterFormatter registers a custom formatter under the given name,
// replacing any previous registration.
func RegisterFormatter(name string, f FormatterFunc) {
	regMutex.Lock()
	defer regMutex.Unlock()
	formatterRegistry[name] = f
}

// Formatters returns the sorted names of all registered formatters. The
// static validator uses this set to detect references to formatters that
// would be unknown at render time.
func Formatters() []string {
	regMutex.RLock()
	defer regMutex.RUnlock()
	names := make([]string, 0, len(formatterRegistry))
	for name := range formatterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyFormatter applies a formatter by name.
func applyFormatter(v any, name, arg string) (any, error) {
	regMutex.RLock()
	f, ok := formatterRegistry[name]
	regMutex.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown formatter: %s", name)
	}
	return f(v, arg)
}

///////////////////////////////////////////////////////////////////////////////
// DEFAULT FORMATTERS REGISTERED AT INIT
///////////////////////////////////////////////////////////////////////////////

func init() {
	RegisterFormatter("upper", func(v any, arg string) (any, error) {
		return strings.ToUpper(fmt.Sprint(v)), nil
	})
	RegisterFormatter("lower", func(v any, arg string) (any, error) {
		return strings.ToLower(fmt.Sprint(v)), nil
	})
	RegisterFormatter("title", func(v any, arg string) (any, error) {
		return cases.Title(language.Und).String(fmt.Sprint(v)), nil
	})

	RegisterFormatter("number", func(v any, arg string) (any, error) {
		return formatNumber(v, arg)
	})
	RegisterFormatter("currency", func(v any, arg string) (any, error) {
		return formatCurrency(v, arg)
	})
	RegisterFormatter("date", func(v any, arg string) (any, error) {
		return formatDate(v, arg)
	})
}

func formatDate(v any, layout string) (string, error) {
	if layout == "" {
		layout = "2006-01-02"
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return "", errors.Errorf("not a time: %v", v)
	}
	return t.Format(layout), nil
}

func formatNumber(v any, precision string) (string, error) {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return "", errors.Errorf("number formatter requires a numeric value, got %T", v)
	}

	p := 0
	if precision != "" {
		p, err = strconv.Atoi(precision)
		if err != nil {
			return "", errors.Errorf("number formatter: invalid precision %q", precision)
		}
	}

	s := strconv.FormatFloat(f, 'f', p, 64)
	return addThousandsSep(s), nil
}

func formatCurrency(v any, arg string) (string, error) {
	symbol := "$"
	if arg != "" {
		symbol = arg
	}

	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, sym := range []string{"$", "¥", "€", "£", symbol} {
			s = strings.TrimPrefix(s, sym)
		}
		v = strings.ReplaceAll(s, ",", "")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return "", errors.Errorf("currency formatter: cannot parse number from %v", v)
	}

	return symbol + addThousandsSep(strconv.FormatFloat(f, 'f', 2, 64)), nil
}

func addThousandsSep(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	intPart := parts[0]

	var buf bytes.Buffer
	for i, c := range intPart {
		if i != 0 && (len(intPart)-i)%3 == 0 {
			buf.WriteRune(',')
		}
		buf.WriteRune(c)
	}

	if len(parts) > 1 {
		buf.WriteRune('.')
		buf.WriteString(parts[1])
	}

	if neg {
		return "-" + buf.String()
	}
	return buf.String()
}

///////////////////////////////////////////////////////////////////////////////
// COMPARISONS
///////////////////////////////////////////////////////////////////////////////

func compareValues(v any, op string, test string) (bool, error) {
	switch vv := v.(type) {
	case string:
		switch op {
		case "eq":
			return vv == test, nil
		default:
			return false, errors.Errorf("unsupported string op: %s", op)
		}
	case time.Time, *time.Time:
		return false, errors.Errorf("unsupported type for compare: %T", v)
	default:
		lv, err := cast.ToFloat64E(v)
		if err != nil {
			return false, errors.Errorf("unsupported type for compare: %T", v)
		}
		rv, err := strconv.ParseFloat(test, 64)
		if err != nil {
			return false, err
		}
		switch op {
		case "eq":
			return lv == rv, nil
		case "gt":
			return lv > rv, nil
		case "lt":
			return lv < rv, nil
		default:
			return false, errors.Errorf("unknown op: %s", op)
		}
	}
}
