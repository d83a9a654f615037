package template

import (
	"os"
	"path/filepath"
	"strings"
)

// Theme color slots, in the order the scheme is assembled. Accents lead so
// theme-derived export styling picks an accent before plain dark/light.
var colorSchemeSlots = []string{
	"a:accent1", "a:accent2", "a:accent3", "a:accent4", "a:accent5", "a:accent6",
	"a:dk1", "a:lt1", "a:dk2", "a:lt2", "a:hlink", "a:folHlink",
}

// parseStyles extracts the color scheme, font families and master layout ids.
// Missing or unparseable theme/master parts never fail the overall parse;
// styles fall back to documented defaults instead.
func (p *Parser) parseStyles(extractDir string) TemplateStyles {
	styles := TemplateStyles{
		ColorScheme:   []string{"#000000", "#FFFFFF"},
		FontFamilies:  []string{"Arial", "Calibri"},
		MasterLayouts: []string{},
	}

	themePath := filepath.Join(extractDir, "ppt", "theme", "theme1.xml")
	if data, err := os.ReadFile(themePath); err == nil {
		if theme, err := ParsePart("ppt/theme/theme1.xml", data); err == nil {
			styles.Theme = theme

			elements := theme.FindFirst("a:themeElements")
			if colors := themeColors(elements.FindFirst("a:clrScheme")); len(colors) > 0 {
				styles.ColorScheme = colors
			}
			if fonts := themeFonts(elements.FindFirst("a:fontScheme")); len(fonts) > 0 {
				styles.FontFamilies = fonts
			}
		} else {
			p.log("Failed to parse theme1.xml, using default styles")
		}
	}

	mastersDir := filepath.Join(extractDir, "ppt", "slideMasters")
	if entries, err := os.ReadDir(mastersDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".xml") {
				styles.MasterLayouts = append(styles.MasterLayouts, strings.TrimSuffix(e.Name(), ".xml"))
			}
		}
	}

	return styles
}

// themeColors reads the scheme's srgbClr/sysClr values as "#RRGGBB" strings,
// deduplicated in slot order.
func themeColors(clrScheme *Node) []string {
	if clrScheme == nil {
		return nil
	}
	var colors []string
	for _, slot := range colorSchemeSlots {
		node := clrScheme.FindFirst(slot)
		if hex := colorHex(node); hex != "" {
			colors = append(colors, hex)
		}
	}
	return dedupeStrings(colors)
}

func colorHex(node *Node) string {
	if v := node.FindFirst("a:srgbClr").Attr("val"); v != "" {
		return "#" + strings.ToUpper(v)
	}
	if v := node.FindFirst("a:sysClr").Attr("lastClr"); v != "" {
		return "#" + strings.ToUpper(v)
	}
	return ""
}

// themeFonts reads the major and minor latin typefaces, deduplicated.
func themeFonts(fontScheme *Node) []string {
	if fontScheme == nil {
		return nil
	}
	var fonts []string
	if f := fontScheme.FindFirst("a:majorFont", "a:latin").Attr("typeface"); f != "" {
		fonts = append(fonts, f)
	}
	if f := fontScheme.FindFirst("a:minorFont", "a:latin").Attr("typeface"); f != "" {
		fonts = append(fonts, f)
	}
	return dedupeStrings(fonts)
}
