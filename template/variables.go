package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder variables come in two syntaxes, {{name}} and ${name}, which may
// coexist in the same document. Unterminated or nested placeholders simply do
// not match.
var placeholderRe = regexp.MustCompile(`\{\{([^{}]+)\}\}|\$\{([^{}]+)\}`)

// ExtractVariables returns the placeholder names found in text, one entry per
// occurrence, in document order. Whitespace around the identifier is trimmed.
func ExtractVariables(text string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CanonicalPlaceholder is the stored re-renderable form of a variable,
// regardless of which syntax it was found in.
func CanonicalPlaceholder(name string) string {
	return fmt.Sprintf("{{%s}}", name)
}

// buildVariableCatalog aggregates every slide's variable names into the
// deduplicated template-level catalog, preserving first-seen order.
func buildVariableCatalog(slides []TemplateSlide) []TemplateVariable {
	seen := make(map[string]bool)
	var catalog []TemplateVariable
	for _, slide := range slides {
		for _, name := range slide.Variables {
			if seen[name] {
				continue
			}
			seen[name] = true
			catalog = append(catalog, TemplateVariable{
				Name:        name,
				Type:        "text",
				Placeholder: CanonicalPlaceholder(name),
				Required:    true,
			})
		}
	}
	return catalog
}

// dedupeStrings removes duplicates while preserving first-seen order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
