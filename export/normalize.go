package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Slide content arrives in several dynamic shapes. Instead of type-sniffing
// inside the renderer, a normalization pass turns each slide's content into
// exactly one tagged block which the renderer switches over.

type blockKind int

const (
	blockText blockKind = iota
	blockList
	blockTable
)

// listItem is one normalized line of a bulleted/numbered list.
type listItem struct {
	text     string
	indent   int // 0-based, capped at maxIndentLevel
	numbered bool
}

// contentBlock is the tagged variant produced by normalizeContent.
type contentBlock struct {
	kind  blockKind
	text  string     // blockText
	items []listItem // blockList
	rows  [][]string // blockTable, first row is the header
}

const maxIndentLevel = 5

var (
	tableRuleRe  = regexp.MustCompile(`\|?\s*[-:]+\s*(\|\s*[-:]+\s*)+\|?`)
	numberedRe   = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
	bulletLineRe = regexp.MustCompile(`^(\s*)([-•–*]?\s*)?(.*)$`)
	edgePipesRe  = regexp.MustCompile(`^\||\|$`)
)

// normalizeContent flattens a slide's dynamic content into lines and
// classifies the result as a single text block, a table or a list.
func normalizeContent(content interface{}) contentBlock {
	lines := nonEmptyLines(flattenContent(content))

	if len(lines) <= 1 {
		text := ""
		if len(lines) == 1 {
			text = lines[0]
		}
		return contentBlock{kind: blockText, text: strings.TrimSpace(text)}
	}

	if looksLikeTable(lines) {
		return contentBlock{kind: blockTable, rows: parseTableRows(lines)}
	}

	items := make([]listItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, classifyLine(line))
	}
	return contentBlock{kind: blockList, items: items}
}

// flattenContent renders the content union into newline-separated text.
// Nested items with a "children" relation get two spaces of indentation per
// level, which classifyLine later converts back into indent levels.
func flattenContent(content interface{}) string {
	var lines []string
	appendContent(&lines, content, 0)
	return strings.Join(lines, "\n")
}

func appendContent(lines *[]string, content interface{}, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := content.(type) {
	case nil:
	case string:
		for _, line := range strings.Split(v, "\n") {
			*lines = append(*lines, indent+line)
		}
	case []string:
		for _, item := range v {
			appendContent(lines, item, depth)
		}
	case []interface{}:
		for _, item := range v {
			appendContent(lines, item, depth)
		}
	case map[string]interface{}:
		text, hasText := v["text"].(string)
		children, hasChildren := v["children"]
		if hasText {
			*lines = append(*lines, indent+text)
		}
		if hasChildren {
			appendContent(lines, children, depth+1)
		}
		if !hasText && !hasChildren {
			// Arbitrary object, keep it visible the way the original did.
			if b, err := json.Marshal(v); err == nil {
				*lines = append(*lines, indent+string(b))
			}
		}
	default:
		*lines = append(*lines, indent+fmt.Sprintf("%v", v))
	}
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// looksLikeTable detects a markdown table: the first line carries a pipe and
// the second matches the separator-row pattern.
func looksLikeTable(lines []string) bool {
	return len(lines) >= 2 &&
		strings.Contains(lines[0], "|") &&
		tableRuleRe.MatchString(lines[1])
}

// parseTableRows splits every pipe-carrying line into trimmed cells, dropping
// the separator row.
func parseTableRows(lines []string) [][]string {
	var rows [][]string
	for i, line := range lines {
		if !strings.Contains(line, "|") {
			continue
		}
		if i == 1 && tableRuleRe.MatchString(line) {
			continue
		}
		stripped := edgePipesRe.ReplaceAllString(strings.TrimSpace(line), "")
		cells := strings.Split(stripped, "|")
		row := make([]string, len(cells))
		for j, c := range cells {
			row[j] = strings.TrimSpace(c)
		}
		rows = append(rows, row)
	}
	return rows
}

// classifyLine derives a list item from one line: a "1. " prefix makes it a
// numbered item with the digits stripped, anything else is a bullet with any
// leading bullet glyph removed. Leading whitespace determines the indent
// level, two spaces per level.
func classifyLine(line string) listItem {
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return listItem{
			text:     strings.TrimSpace(m[3]),
			indent:   indentLevel(len(m[1])),
			numbered: true,
		}
	}

	m := bulletLineRe.FindStringSubmatch(line)
	return listItem{
		text:   strings.TrimSpace(m[3]),
		indent: indentLevel(len(m[1])),
	}
}

func indentLevel(leadingSpaces int) int {
	level := leadingSpaces / 2
	if level > maxIndentLevel {
		return maxIndentLevel
	}
	return level
}
