package template

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// DataBinding maps variable names to the values substituted for them.
// Non-string values are rendered with their default formatting.
type DataBinding map[string]interface{}

// ApplyData substitutes bound values for every placeholder occurrence across
// all slides and returns a new template instance; the input is never mutated.
// Variables without a binding keep their literal placeholder text, which is
// how downstream consumers detect unresolved variables.
func ApplyData(t *ParsedTemplate, data DataBinding) *ParsedTemplate {
	out := t.Clone()

	for si := range out.Slides {
		slide := &out.Slides[si]
		for ci := range slide.Content {
			content := &slide.Content[ci]
			text := content.Content
			for _, name := range content.Variables {
				value, ok := data[name]
				if !ok {
					continue
				}
				text = substituteVariable(text, name, formatValue(value))
			}
			content.Content = text
		}
	}

	out.Metadata.ProcessedAt = time.Now().Format(time.RFC3339)
	out.Metadata.DataApplied = true
	out.Metadata.DataKeys = sortedKeys(data)
	return out
}

// substituteVariable replaces every occurrence of both placeholder syntaxes
// for name, tolerating whitespace around the identifier.
func substituteVariable(text, name, value string) string {
	quoted := regexp.QuoteMeta(name)
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`\{\{\s*` + quoted + `\s*\}\}`),
		regexp.MustCompile(`\$\{\s*` + quoted + `\s*\}`),
	}
	for _, re := range patterns {
		text = re.ReplaceAllLiteralString(text, value)
	}
	return text
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func sortedKeys(data DataBinding) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
