// Package template expands ${var} placeholders in prompt and configuration
// strings. Dollar-style $var expansion exists for config values but is off
// by default, since prompt text routinely contains literal dollar amounts.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracePattern matches ${varname}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $varname up to a non-word boundary, so $port
	// does not match inside $portNumber.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// MissingAction specifies how to handle placeholders with no matching
// variable.
type MissingAction int

const (
	// MissingKeep leaves the placeholder untouched. Default.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError makes Expand return an UndefinedVariableError.
	MissingError
)

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing variables are handled.
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) { e.missingAction = action }
}

// WithDollarStyle enables $var expansion in addition to ${var}.
func WithDollarStyle(enabled bool) Option {
	return func(e *Expander) { e.dollarStyle = enabled }
}

// Expander expands variable placeholders in strings. Safe for concurrent
// use after construction.
type Expander struct {
	missingAction MissingAction
	dollarStyle   bool
}

// NewExpander creates an Expander. Defaults: ${var} style only, missing
// variables kept as-is.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missingAction: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces placeholders in s with values from vars. An error is only
// possible with MissingError.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	replace := func(match, name string) string {
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
			return match
		default:
			return match
		}
	}

	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		return replace(match, match[2:len(match)-1])
	})
	if e.dollarStyle {
		result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match, match[1:])
		})
	}

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand is Expand that panics on error. Safe with MissingKeep and
// MissingEmpty, which never fail.
func (e *Expander) MustExpand(s string, vars map[string]any) string {
	result, err := e.Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// ExpandMap expands all string values of m, recursing into nested
// map[string]any values. Non-string values are copied unchanged.
func (e *Expander) ExpandMap(m map[string]any, vars map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			expanded, err := e.Expand(val, vars)
			if err != nil {
				return nil, err
			}
			result[k] = expanded
		case map[string]any:
			expanded, err := e.ExpandMap(val, vars)
			if err != nil {
				return nil, err
			}
			result[k] = expanded
		default:
			result[k] = v
		}
	}
	return result, nil
}

// UndefinedVariableError reports placeholders that had no matching variable.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand expands ${var} placeholders with the default expander. Missing
// variables stay as-is.
func Expand(s string, vars map[string]any) string {
	result, _ := defaultExpander.Expand(s, vars)
	return result
}

// ExpandMap expands string values of m with the default expander.
func ExpandMap(m map[string]any, vars map[string]any) map[string]any {
	result, _ := defaultExpander.ExpandMap(m, vars)
	return result
}
