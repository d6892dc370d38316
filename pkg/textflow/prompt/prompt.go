// Package prompt holds the instructions sent to the generation service and
// the ${name} template expansion used to build them.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultSystem instructs the service to answer with a bare node array.
const DefaultSystem = "You are a helpful assistant that simplifies text and breaks it down into flowchart nodes. " +
	"Each node should be a clear, concise step or concept. " +
	"Return ONLY the JSON array of nodes, without any explanation. " +
	"The JSON array should contain objects with 'title' and 'description' keys."

// DefaultUser frames the caller's text. ${input} is replaced verbatim.
const DefaultUser = "Please break down this text into flowchart nodes: ${input}"

// bracePattern matches ${name}.
var bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// UndefinedVariableError lists placeholders that had no value.
type UndefinedVariableError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable(s): %s", strings.Join(e.Names, ", "))
}

// Expand replaces every ${name} in tmpl with vars[name]. Values are inserted
// once; placeholders appearing inside a value are not expanded again.
func Expand(tmpl string, vars map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := bracePattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		missing[name] = struct{}{}
		return match
	})

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return out, &UndefinedVariableError{Names: names}
	}
	return out, nil
}

// Variables returns the placeholder names used in tmpl, in first-use order.
func Variables(tmpl string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range bracePattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Set is a system instruction plus a user template.
type Set struct {
	System string
	User   string
}

// Defaults returns the built-in prompt set.
func Defaults() Set {
	return Set{System: DefaultSystem, User: DefaultUser}
}

// Validate checks that the user template only references ${input}.
func (s Set) Validate() error {
	if strings.TrimSpace(s.System) == "" {
		return fmt.Errorf("system prompt is empty")
	}
	vars := Variables(s.User)
	if len(vars) != 1 || vars[0] != "input" {
		return fmt.Errorf("user template must reference exactly ${input}, found %v", vars)
	}
	return nil
}

// UserMessage renders the user template for input.
func (s Set) UserMessage(input string) (string, error) {
	return Expand(s.User, map[string]string{"input": input})
}
