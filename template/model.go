// Package template implements PPTX template ingestion: extracting the OOXML
// archive, parsing its XML parts into a document model, detecting placeholder
// variables and binding data back into the model.
package template

// TemplateVariable is a named substitution point found in slide text.
type TemplateVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "text", "image", "chart" or "table"
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// ContentPosition is reserved for shape transform data. The parser does not
// populate it from the actual xfrm node yet.
type ContentPosition struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TemplateContent is one shape's text payload within a slide.
type TemplateContent struct {
	Type      string            `json:"type"` // only "text" is produced today
	Content   string            `json:"content"`
	Variables []string          `json:"variables"`
	Position  ContentPosition   `json:"position"`
	Styles    map[string]string `json:"styles"`
}

// TemplateSlide is one slide of a parsed template.
type TemplateSlide struct {
	SlideNumber int               `json:"slideNumber"`
	SlideID     string            `json:"slideId"`
	Title       string            `json:"title,omitempty"`
	Content     []TemplateContent `json:"content"`
	Layout      string            `json:"layout"`
	Variables   []string          `json:"variables"`
}

// TemplateStyles summarizes the theme of a parsed template.
type TemplateStyles struct {
	ColorScheme   []string `json:"colorScheme"`
	FontFamilies  []string `json:"fontFamilies"`
	MasterLayouts []string `json:"masterLayouts"`
	Theme         *Node    `json:"theme,omitempty"` // raw theme1.xml tree, if present
}

// TemplateMetadata records parse provenance.
type TemplateMetadata struct {
	OriginalFileName string   `json:"originalFileName"`
	ParsedAt         string   `json:"parsedAt"`
	SlideCount       int      `json:"slideCount"`
	HasVariables     bool     `json:"hasVariables"`
	ProcessedAt      string   `json:"processedAt,omitempty"`
	DataApplied      bool     `json:"dataApplied,omitempty"`
	DataKeys         []string `json:"dataKeys,omitempty"`
}

// ParsedTemplate is the root artifact of template ingestion.
type ParsedTemplate struct {
	TemplateID  string             `json:"templateId"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Slides      []TemplateSlide    `json:"slides"`
	Variables   []TemplateVariable `json:"variables"`
	Styles      TemplateStyles     `json:"styles"`
	Metadata    TemplateMetadata   `json:"metadata"`
}

// Clone returns a deep copy of the template. Data binding always works on a
// clone so that stored templates are never mutated in place.
func (t *ParsedTemplate) Clone() *ParsedTemplate {
	if t == nil {
		return nil
	}
	out := &ParsedTemplate{
		TemplateID:  t.TemplateID,
		Name:        t.Name,
		Description: t.Description,
		Metadata:    t.Metadata,
	}
	out.Metadata.DataKeys = append([]string(nil), t.Metadata.DataKeys...)

	out.Slides = make([]TemplateSlide, len(t.Slides))
	for i, s := range t.Slides {
		cs := s
		cs.Variables = append([]string(nil), s.Variables...)
		cs.Content = make([]TemplateContent, len(s.Content))
		for j, c := range s.Content {
			cc := c
			cc.Variables = append([]string(nil), c.Variables...)
			if c.Styles != nil {
				cc.Styles = make(map[string]string, len(c.Styles))
				for k, v := range c.Styles {
					cc.Styles[k] = v
				}
			}
			cs.Content[j] = cc
		}
		out.Slides[i] = cs
	}

	out.Variables = append([]TemplateVariable(nil), t.Variables...)
	out.Styles = TemplateStyles{
		ColorScheme:   append([]string(nil), t.Styles.ColorScheme...),
		FontFamilies:  append([]string(nil), t.Styles.FontFamilies...),
		MasterLayouts: append([]string(nil), t.Styles.MasterLayouts...),
		Theme:         t.Styles.Theme, // read-only tree, safe to share
	}
	return out
}
