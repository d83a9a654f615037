package export

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeContentSingleLineIsText(t *testing.T) {
	block := normalizeContent("Just one line")
	if block.kind != blockText || block.text != "Just one line" {
		t.Errorf("block = %+v", block)
	}

	empty := normalizeContent(nil)
	if empty.kind != blockText || empty.text != "" {
		t.Errorf("nil content block = %+v", empty)
	}
}

func TestNormalizeContentMarkdownTable(t *testing.T) {
	content := "| Region | Sales |\n| --- | ---: |\n| North | 120 |\n| South | 80 |"

	block := normalizeContent(content)
	if block.kind != blockTable {
		t.Fatalf("kind = %v, want table", block.kind)
	}

	want := [][]string{
		{"Region", "Sales"},
		{"North", "120"},
		{"South", "80"},
	}
	if !reflect.DeepEqual(block.rows, want) {
		t.Errorf("rows = %v, want %v", block.rows, want)
	}
}

func TestNormalizeContentTableWithoutEdgePipes(t *testing.T) {
	content := "Name | Value\n--- | ---\nfoo | 1"

	block := normalizeContent(content)
	if block.kind != blockTable {
		t.Fatalf("kind = %v, want table", block.kind)
	}
	if len(block.rows) != 2 || block.rows[1][0] != "foo" {
		t.Errorf("rows = %v", block.rows)
	}
}

func TestNormalizeContentPipesWithoutSeparatorAreNotATable(t *testing.T) {
	content := "a | b\nplain second line\nthird"

	block := normalizeContent(content)
	if block.kind != blockList {
		t.Errorf("kind = %v, want list", block.kind)
	}
}

func TestNormalizeContentListClassification(t *testing.T) {
	content := []string{
		"1. First step",
		"2. Second step",
		"- plain bullet",
		"• glyph bullet",
		"  indented child",
		"    deeper child",
	}

	block := normalizeContent(content)
	if block.kind != blockList {
		t.Fatalf("kind = %v, want list", block.kind)
	}
	if len(block.items) != 6 {
		t.Fatalf("items = %v", block.items)
	}

	checks := []struct {
		text     string
		indent   int
		numbered bool
	}{
		{"First step", 0, true},
		{"Second step", 0, true},
		{"plain bullet", 0, false},
		{"glyph bullet", 0, false},
		{"indented child", 1, false},
		{"deeper child", 2, false},
	}
	for i, want := range checks {
		got := block.items[i]
		if got.text != want.text || got.indent != want.indent || got.numbered != want.numbered {
			t.Errorf("item[%d] = %+v, want %+v", i, got, want)
		}
	}
}

func TestNormalizeContentIndentCapped(t *testing.T) {
	item := classifyLine("              very deep") // 14 spaces, level 7 uncapped
	if item.indent != maxIndentLevel {
		t.Errorf("indent = %d, want cap %d", item.indent, maxIndentLevel)
	}
}

func TestFlattenContentNestedObjects(t *testing.T) {
	content := []interface{}{
		map[string]interface{}{
			"text": "Parent",
			"children": []interface{}{
				map[string]interface{}{"text": "Child"},
			},
		},
		"Trailer",
	}

	got := flattenContent(content)
	want := "Parent\n  Child\nTrailer"
	if got != want {
		t.Errorf("flattenContent = %q, want %q", got, want)
	}
}

func TestFlattenContentArbitraryObjectStaysVisible(t *testing.T) {
	content := map[string]interface{}{"metric": "revenue", "value": 12.5}

	got := flattenContent(content)
	if got == "" {
		t.Fatal("arbitrary object was dropped")
	}
	// Rendered as JSON, so both keys survive.
	for _, frag := range []string{"metric", "revenue", "value"} {
		if !strings.Contains(got, frag) {
			t.Errorf("flattened output %q missing %q", got, frag)
		}
	}
}

func TestNormalizeContentMixedStringsAndMaps(t *testing.T) {
	content := []interface{}{"First line", "Second line", "Third line"}

	block := normalizeContent(content)
	if block.kind != blockList {
		t.Fatalf("kind = %v, want list", block.kind)
	}
	if block.items[0].text != "First line" || block.items[2].text != "Third line" {
		t.Errorf("items = %+v", block.items)
	}
}
