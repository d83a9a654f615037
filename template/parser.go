package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const titleMaxLen = 50

// Parser turns an uploaded PPTX package into a ParsedTemplate and persists it
// through the Store. Construct one at startup and share it; parsing itself
// holds no mutable state, so concurrent parses are independent.
type Parser struct {
	store *Store
	log   func(string)
}

// NewParser creates a Parser persisting results into store. log may be nil.
func NewParser(store *Store, log func(string)) *Parser {
	if log == nil {
		log = func(string) {}
	}
	return &Parser{store: store, log: log}
}

// ParseTemplate parses the PPTX file at filePath. originalFileName is the
// user-facing upload name used for display metadata. The parsed template is
// saved to the store before returning.
func (p *Parser) ParseTemplate(filePath, originalFileName string) (*ParsedTemplate, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, &ArchiveError{Path: filePath, Err: err}
	}

	templateID := newTemplateID()
	extractDir := p.store.WorkDir(templateID)

	extracted, err := ExtractArchive(filePath, extractDir)
	if err != nil {
		return nil, err
	}
	p.log(fmt.Sprintf("Extracted %d entries for %s", len(extracted), templateID))

	// presentation.xml is mandatory evidence of a valid package.
	slideIDs, err := p.parsePresentationXML(extractDir)
	if err != nil {
		return nil, err
	}

	slides := p.parseSlides(extractDir)
	styles := p.parseStyles(extractDir)
	variables := buildVariableCatalog(slides)

	tpl := &ParsedTemplate{
		TemplateID:  templateID,
		Name:        strings.TrimSuffix(originalFileName, filepath.Ext(originalFileName)),
		Description: fmt.Sprintf("Parsed template from %s", originalFileName),
		Slides:      slides,
		Variables:   variables,
		Styles:      styles,
		Metadata: TemplateMetadata{
			OriginalFileName: originalFileName,
			ParsedAt:         time.Now().Format(time.RFC3339),
			SlideCount:       len(slides),
			HasVariables:     len(variables) > 0,
		},
	}

	p.log(fmt.Sprintf("Parsed template %s: %d slides, %d declared slide ids, %d variables",
		templateID, len(slides), len(slideIDs), len(variables)))

	if err := p.store.Save(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// newTemplateID builds a timestamp-plus-random id. Uniqueness across
// concurrent parses relies on the uuid fragment, not the millisecond clock.
func newTemplateID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("template_%d_%s", time.Now().UnixMilli(), suffix)
}

// parsePresentationXML reads ppt/presentation.xml and returns the declared
// slide relationship ids. The file's presence is required; the id list is
// informational only (see parseSlides for the ordering choice).
func (p *Parser) parsePresentationXML(extractDir string) ([]string, error) {
	path := filepath.Join(extractDir, "ppt", "presentation.xml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StructureError{Missing: "presentation.xml"}
		}
		return nil, &ArchiveError{Path: path, Err: err}
	}

	root, err := ParsePart("ppt/presentation.xml", data)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, sldID := range root.FindFirst("p:sldIdLst").ChildrenNamed("p:sldId") {
		if rid := sldID.Attr("r:id"); rid != "" {
			ids = append(ids, rid)
		}
	}
	return ids, nil
}

var slideFileRe = regexp.MustCompile(`^slide(\d+)\.xml$`)

// parseSlides reads every ppt/slides/slideN.xml in numeric filename order.
// Filename order approximates the declared slide order for typical exports;
// resolving the authoritative order through the relationships part is a known
// follow-up. A slide that fails to parse degrades to a placeholder slide
// rather than aborting the whole template.
func (p *Parser) parseSlides(extractDir string) []TemplateSlide {
	slidesDir := filepath.Join(extractDir, "ppt", "slides")
	entries, err := os.ReadDir(slidesDir)
	if err != nil {
		p.log("Slides directory not found")
		return nil
	}

	type slideFile struct {
		name string
		num  int
	}
	var files []slideFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := slideFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		files = append(files, slideFile{name: e.Name(), num: n})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })

	slides := make([]TemplateSlide, 0, len(files))
	for i, f := range files {
		slide, err := p.parseSlide(filepath.Join(slidesDir, f.name), i+1)
		if err != nil {
			p.log(fmt.Sprintf("Failed to parse %s: %v", f.name, err))
			slides = append(slides, TemplateSlide{
				SlideNumber: i + 1,
				SlideID:     strings.TrimSuffix(f.name, ".xml"),
				Title:       fmt.Sprintf("Slide %d", i+1),
				Content:     []TemplateContent{},
				Layout:      "content",
				Variables:   []string{},
			})
			continue
		}
		slides = append(slides, slide)
	}
	return slides
}

func (p *Parser) parseSlide(slidePath string, slideNumber int) (TemplateSlide, error) {
	data, err := os.ReadFile(slidePath)
	if err != nil {
		return TemplateSlide{}, err
	}
	root, err := ParsePart(filepath.Base(slidePath), data)
	if err != nil {
		return TemplateSlide{}, err
	}

	var contents []TemplateContent
	var variables []string

	spTree := root.FindFirst("p:cSld", "p:spTree")
	for _, sp := range spTree.ChildrenNamed("p:sp") {
		content, ok := parseShape(sp)
		if !ok {
			continue
		}
		contents = append(contents, content)
		variables = append(variables, content.Variables...)
	}

	slide := TemplateSlide{
		SlideNumber: slideNumber,
		SlideID:     strings.TrimSuffix(filepath.Base(slidePath), ".xml"),
		Title:       slideTitle(contents),
		Content:     contents,
		Layout:      "content", // layout classification is not differentiated yet
		Variables:   dedupeStrings(variables),
	}
	if slide.Content == nil {
		slide.Content = []TemplateContent{}
	}
	if slide.Variables == nil {
		slide.Variables = []string{}
	}
	return slide, nil
}

// parseShape concatenates every run's text within every paragraph of the
// shape's text body. Paragraph boundaries deliberately insert no separator;
// distinct shapes become distinct TemplateContent entries instead.
func parseShape(sp *Node) (TemplateContent, bool) {
	txBody := sp.FindFirst("p:txBody")
	if txBody == nil {
		return TemplateContent{}, false
	}

	var text strings.Builder
	for _, para := range txBody.ChildrenNamed("a:p") {
		for _, run := range para.ChildrenNamed("a:r") {
			if t := run.FindFirst("a:t"); t != nil {
				text.WriteString(t.Text)
			}
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return TemplateContent{}, false
	}

	content := TemplateContent{
		Type:      "text",
		Content:   text.String(),
		Variables: ExtractVariables(text.String()),
		Position:  ContentPosition{X: 0, Y: 0, Width: 100, Height: 20},
		Styles:    map[string]string{},
	}
	if content.Variables == nil {
		content.Variables = []string{}
	}
	return content, true
}

// slideTitle picks the first non-empty text content as the slide title,
// truncated to 50 characters with a trailing ellipsis marker.
func slideTitle(contents []TemplateContent) string {
	for _, c := range contents {
		if c.Type != "text" {
			continue
		}
		title := strings.TrimSpace(c.Content)
		if title == "" {
			continue
		}
		runes := []rune(title)
		if len(runes) > titleMaxLen {
			return string(runes[:titleMaxLen]) + "..."
		}
		return title
	}
	return ""
}
