// Package export serializes generic presentations into OOXML packages using
// the GoPPT library.
package export

import "time"

// Slide is one slide of a generic presentation. Content is deliberately
// loose: a plain string, a list of strings, or a list of nested items with a
// "children" relation. The serializer normalizes it before rendering.
type Slide struct {
	Title        string      `json:"title"`
	Content      interface{} `json:"content"`
	Layout       string      `json:"layout,omitempty"` // advisory hint, not enforced
	SpeakerNotes string      `json:"speakerNotes,omitempty"`
}

// Presentation is the export-side model, independent of parsed templates.
type Presentation struct {
	Title     string    `json:"title"`
	Slides    []Slide   `json:"slides"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ThemeOptions carries styling hints for the generated deck.
type ThemeOptions struct {
	PrimaryColor string   `json:"primaryColor,omitempty"`
	TitleColor   string   `json:"titleColor,omitempty"`
	TextColor    string   `json:"textColor,omitempty"`
	BulletColor  string   `json:"bulletColor,omitempty"`
	AccentColors []string `json:"accentColors,omitempty"`
	FontName     string   `json:"fontName,omitempty"`
}

// TemplateTheme is the styling summary derived from a previously parsed
// template: its first two color-scheme entries become title/body colors and
// its first font family becomes the document-wide font face.
type TemplateTheme struct {
	ColorScheme   []string `json:"colorScheme"`
	FontFamilies  []string `json:"fontFamilies"`
	MasterLayouts []string `json:"masterLayouts"`
}

// ExportOptions bundles the optional theming inputs for GeneratePPTX.
type ExportOptions struct {
	Theme         *ThemeOptions
	TemplateTheme *TemplateTheme
}

// ExportResult describes a successfully generated file.
type ExportResult struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	Size     int64  `json:"size"`
}
