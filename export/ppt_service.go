package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"
)

// PPTService handles PowerPoint generation using GoPPT (pure Go, zero dependencies)
type PPTService struct {
	exportDir string
	log       func(string)
}

// NewPPTService creates a PPTService writing into exportDir. log may be nil.
func NewPPTService(exportDir string, log func(string)) *PPTService {
	if log == nil {
		log = func(string) {}
	}
	return &PPTService{exportDir: exportDir, log: log}
}

// Slide layout constants, 16:9 widescreen.
const (
	emuPerInch = 914400

	pptMarginLeft = int64(0.4 * emuPerInch)

	pptContentWidth = int64(9.2 * emuPerInch)
	pptSlideWidth   = int64(10.0 * emuPerInch)
	pptSlideHeight  = int64(5.625 * emuPerInch)

	pptFontTitle     = 36
	pptFontHeading   = 24
	pptFontBody      = 16
	pptFontTableCell = 12
	pptFontFooter    = 12
)

const (
	defaultTitleColor = "333333"
	defaultTextColor  = "444444"
	headerFillColor   = "EEEEEE"
)

// helper: create a solid fill
func solidFill(argb string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb))
}

// helper: set paragraph alignment to center
func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

// resolvedTheme is the flattened styling actually applied while rendering.
type resolvedTheme struct {
	titleColor   string // ARGB
	textColor    string // ARGB
	bulletColor  string // ARGB
	primaryColor string // ARGB, header fills and accent bars
	fontName     string
}

// pptColor converts "#RRGGBB" (or bare "RRGGBB") into GoPPT's ARGB form.
// Anything unparseable falls back to the given default.
func pptColor(hex, fallback string) string {
	h := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	switch len(h) {
	case 6:
		return "FF" + h
	case 8:
		return h
	default:
		return "FF" + fallback
	}
}

// resolveTheme layers explicit theme options over template-derived styles
// over fixed defaults. From a template theme, the first and second color
// scheme entries become title and body colors and the first font family
// becomes the document font face.
func resolveTheme(opts *ExportOptions) resolvedTheme {
	th := resolvedTheme{
		titleColor:   "FF" + defaultTitleColor,
		textColor:    "FF" + defaultTextColor,
		primaryColor: "FF" + headerFillColor,
	}

	if opts != nil && opts.TemplateTheme != nil {
		scheme := opts.TemplateTheme.ColorScheme
		if len(scheme) > 0 {
			th.titleColor = pptColor(scheme[0], defaultTitleColor)
			th.primaryColor = pptColor(scheme[0], headerFillColor)
		}
		if len(scheme) > 1 {
			th.textColor = pptColor(scheme[1], defaultTextColor)
		}
		if len(opts.TemplateTheme.FontFamilies) > 0 {
			th.fontName = opts.TemplateTheme.FontFamilies[0]
		}
	}

	if opts != nil && opts.Theme != nil {
		t := opts.Theme
		if t.TitleColor != "" {
			th.titleColor = pptColor(t.TitleColor, defaultTitleColor)
		}
		if t.TextColor != "" {
			th.textColor = pptColor(t.TextColor, defaultTextColor)
		}
		if t.PrimaryColor != "" {
			th.primaryColor = pptColor(t.PrimaryColor, headerFillColor)
		}
		if t.BulletColor != "" {
			th.bulletColor = pptColor(t.BulletColor, defaultTextColor)
		}
		if t.FontName != "" {
			th.fontName = t.FontName
		}
	}

	if th.bulletColor == "" {
		th.bulletColor = th.textColor
	}
	return th
}

// styleRun applies size, color and the theme font face to a text run.
func (th resolvedTheme) styleRun(tr *ppt.TextRun, size int, argb string) {
	font := tr.GetFont().SetSize(size).SetColor(ppt.NewColor(argb))
	if th.fontName != "" {
		font.SetName(th.fontName)
	}
}

// GeneratePPTX serializes the presentation into a .pptx file in the export
// directory and returns its name, path and byte size. On failure no partial
// file is left behind.
func (s *PPTService) GeneratePPTX(pres Presentation, opts *ExportOptions) (*ExportResult, error) {
	theme := resolveTheme(opts)

	p := ppt.New()
	p.GetDocumentProperties().Title = pres.Title

	s.addTitleSlide(p, pres.Title, theme)
	for i, slide := range pres.Slides {
		s.addContentSlide(p, slide, i+1, theme)
	}

	fileName := exportFileName(pres.Title)
	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return nil, &ExportError{FileName: fileName, Err: err}
	}
	filePath := filepath.Join(s.exportDir, fileName)

	if err := s.writeFile(p, filePath); err != nil {
		os.Remove(filePath)
		return nil, &ExportError{FileName: fileName, Err: err}
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, &ExportError{FileName: fileName, Err: err}
	}

	s.log(fmt.Sprintf("PPTX generated: %s (%d bytes)", fileName, info.Size()))
	return &ExportResult{FileName: fileName, FilePath: filePath, Size: info.Size()}, nil
}

func (s *PPTService) writeFile(p *ppt.Presentation, filePath string) error {
	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return fmt.Errorf("create PPT writer: %w", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := w.(*ppt.PPTXWriter).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save PPT: %w", err)
	}
	return f.Close()
}

// addTitleSlide renders the centered, theme-colored title slide.
func (s *PPTService) addTitleSlide(p *ppt.Presentation, title string, theme resolvedTheme) {
	slide := p.GetActiveSlide()

	topBar := slide.CreateRichTextShape()
	topBar.SetOffsetX(0).SetOffsetY(0)
	topBar.SetWidth(pptSlideWidth).SetHeight(int64(0.12 * emuPerInch))
	topBar.SetFill(solidFill(theme.primaryColor))

	titleShape := slide.CreateRichTextShape()
	titleShape.SetOffsetX(pptMarginLeft).SetOffsetY(int64(2.2 * emuPerInch))
	titleShape.SetWidth(pptContentWidth).SetHeight(int64(1.2 * emuPerInch))
	tr := titleShape.CreateTextRun(title)
	theme.styleRun(tr, pptFontTitle, theme.titleColor)
	tr.GetFont().SetBold(true)
	alignCenter(titleShape.GetActiveParagraph())

	bottomBar := slide.CreateRichTextShape()
	bottomBar.SetOffsetX(0).SetOffsetY(pptSlideHeight - int64(0.1*emuPerInch))
	bottomBar.SetWidth(pptSlideWidth).SetHeight(int64(0.1 * emuPerInch))
	bottomBar.SetFill(solidFill(theme.primaryColor))
}

// addContentSlide renders one input slide: heading, normalized body content
// and the slide number.
func (s *PPTService) addContentSlide(p *ppt.Presentation, slide Slide, number int, theme resolvedTheme) {
	out := p.CreateSlide()

	title := slide.Title
	if title == "" {
		title = "Untitled Slide"
	}
	titleShape := out.CreateRichTextShape()
	titleShape.SetOffsetX(pptMarginLeft).SetOffsetY(int64(0.4 * emuPerInch))
	titleShape.SetWidth(pptContentWidth).SetHeight(int64(0.7 * emuPerInch))
	tr := titleShape.CreateTextRun(title)
	theme.styleRun(tr, pptFontHeading, theme.titleColor)
	tr.GetFont().SetBold(true)

	block := normalizeContent(slide.Content)
	switch block.kind {
	case blockTable:
		s.addTable(out, block.rows, theme)
	case blockList:
		s.addList(out, block.items, theme)
	default:
		if block.text != "" {
			s.addTextBlock(out, block.text, theme)
		}
	}

	numShape := out.CreateRichTextShape()
	numShape.SetOffsetX(int64(9.3 * emuPerInch)).SetOffsetY(int64(5.2 * emuPerInch))
	numShape.SetWidth(int64(0.5 * emuPerInch)).SetHeight(int64(0.3 * emuPerInch))
	numTr := numShape.CreateTextRun(fmt.Sprintf("%d", number))
	theme.styleRun(numTr, pptFontFooter, theme.textColor)
	alignCenter(numShape.GetActiveParagraph())
}

func (s *PPTService) addTextBlock(slide *ppt.Slide, text string, theme resolvedTheme) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(pptMarginLeft).SetOffsetY(int64(1.3 * emuPerInch))
	shape.SetWidth(pptContentWidth).SetHeight(int64(3.8 * emuPerInch))
	tr := shape.CreateTextRun(text)
	theme.styleRun(tr, pptFontBody, theme.textColor)
}

// addList renders bulleted and numbered items in one shape, one paragraph per
// item. Numbered items get their sequence number re-applied from a per-level
// counter; visual indentation is two spaces per level.
func (s *PPTService) addList(slide *ppt.Slide, items []listItem, theme resolvedTheme) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(pptMarginLeft).SetOffsetY(int64(1.3 * emuPerInch))
	shape.SetWidth(pptContentWidth).SetHeight(int64(3.8 * emuPerInch))

	counters := make([]int, maxIndentLevel+1)
	for i, item := range items {
		if i > 0 {
			shape.CreateParagraph()
		}

		var text string
		if item.numbered {
			counters[item.indent]++
			for lvl := item.indent + 1; lvl <= maxIndentLevel; lvl++ {
				counters[lvl] = 0
			}
			text = fmt.Sprintf("%d. %s", counters[item.indent], item.text)
		} else {
			text = "• " + item.text
		}
		text = strings.Repeat("  ", item.indent) + text

		tr := shape.CreateTextRun(text)
		theme.styleRun(tr, pptFontBody, theme.bulletColor)
	}
}

// addTable renders the parsed rows as a grid of fixed-width cells: the first
// row with the primary fill as a header, the rest with the default fill.
func (s *PPTService) addTable(slide *ppt.Slide, rows [][]string, theme resolvedTheme) {
	if len(rows) == 0 {
		return
	}

	numCols := 1
	for _, row := range rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	tableWidth := 9.2
	colWidth := tableWidth / float64(numCols)
	rowHeight := 0.45
	startX := 0.4
	startY := 1.3

	for rIdx, row := range rows {
		for cIdx := 0; cIdx < numCols; cIdx++ {
			cell := ""
			if cIdx < len(row) {
				cell = row[cIdx]
			}

			shape := slide.CreateRichTextShape()
			shape.SetOffsetX(int64((startX + float64(cIdx)*colWidth) * emuPerInch))
			shape.SetOffsetY(int64((startY + float64(rIdx)*rowHeight) * emuPerInch))
			shape.SetWidth(int64(colWidth * emuPerInch))
			shape.SetHeight(int64(rowHeight * emuPerInch))

			tr := shape.CreateTextRun(cell)
			if rIdx == 0 {
				shape.SetFill(solidFill(theme.primaryColor))
				tr.GetFont().SetSize(pptFontTableCell).SetBold(true).SetColor(ppt.ColorWhite)
				if theme.fontName != "" {
					tr.GetFont().SetName(theme.fontName)
				}
			} else {
				shape.SetFill(solidFill("FFFFFFFF"))
				theme.styleRun(tr, pptFontTableCell, theme.textColor)
			}
		}
	}
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Zа-яА-ЯёЁ0-9\s]`)

// exportFileName builds "{sanitized-title}_{timestamp}.pptx".
func exportFileName(title string) string {
	sanitized := unsafeFileChars.ReplaceAllString(title, "_")
	runes := []rune(sanitized)
	if len(runes) > 50 {
		sanitized = string(runes[:50])
	}
	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		sanitized = "presentation"
	}
	return fmt.Sprintf("%s_%d.pptx", sanitized, time.Now().UnixMilli())
}

// GetFileStats reports whether an export file exists and its size.
func (s *PPTService) GetFileStats(filePath string) (bool, int64) {
	info, err := os.Stat(filePath)
	if err != nil {
		return false, 0
	}
	return true, info.Size()
}

// ResolveExportPath maps a generated file name back to its path inside the
// export directory, rejecting names that would escape it.
func (s *PPTService) ResolveExportPath(fileName string) (string, error) {
	if fileName == "" || strings.ContainsAny(fileName, `/\`) || strings.Contains(fileName, "..") {
		return "", fmt.Errorf("invalid export file name %q", fileName)
	}
	return filepath.Join(s.exportDir, fileName), nil
}
