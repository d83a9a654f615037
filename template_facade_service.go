package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slideforge/export"
	"slideforge/template"
)

// TemplateFacadeService owns the template store and parser and exposes the
// template lifecycle operations as a registry service.
type TemplateFacadeService struct {
	configService *ConfigService
	logger        func(string)

	store  *template.Store
	parser *template.Parser
}

func NewTemplateFacadeService(configService *ConfigService, logger func(string)) *TemplateFacadeService {
	return &TemplateFacadeService{
		configService: configService,
		logger:        logger,
	}
}

// Name implements the Service interface.
func (s *TemplateFacadeService) Name() string {
	return "TemplateFacadeService"
}

// Initialize implements the Service interface.
func (s *TemplateFacadeService) Initialize(ctx context.Context) error {
	cfg, err := s.configService.GetConfig()
	if err != nil {
		return WrapError(s.Name(), "Initialize", err)
	}

	s.store = template.NewStore(cfg.DataCacheDir, s.logger)
	if err := s.store.Init(); err != nil {
		return WrapError(s.Name(), "Initialize", err)
	}
	s.parser = template.NewParser(s.store, s.logger)
	return nil
}

// Shutdown implements the Service interface.
func (s *TemplateFacadeService) Shutdown() error {
	return nil
}

// UploadTemplate ingests a PPTX file from disk and persists the parse result.
func (s *TemplateFacadeService) UploadTemplate(filePath, originalFileName string) (*template.ParsedTemplate, error) {
	if originalFileName == "" {
		return nil, WrapError(s.Name(), "UploadTemplate", fmt.Errorf("original file name is required"))
	}
	if !strings.HasSuffix(strings.ToLower(originalFileName), ".pptx") {
		return nil, WrapError(s.Name(), "UploadTemplate", fmt.Errorf("only .pptx files are supported, got %q", originalFileName))
	}

	parsed, err := s.parser.ParseTemplate(filePath, originalFileName)
	if err != nil {
		return nil, WrapError(s.Name(), "UploadTemplate", err)
	}
	s.log(fmt.Sprintf("parsed template %s (%d slides, %d variables)",
		parsed.TemplateID, len(parsed.Slides), len(parsed.Variables)))
	return parsed, nil
}

// GetTemplate loads a stored template. Returns (nil, nil) when the id is
// unknown.
func (s *TemplateFacadeService) GetTemplate(templateID string) (*template.ParsedTemplate, error) {
	t, err := s.store.Load(templateID)
	if err != nil {
		return nil, WrapError(s.Name(), "GetTemplate", err)
	}
	return t, nil
}

// ListTemplates returns all stored templates.
func (s *TemplateFacadeService) ListTemplates() ([]*template.ParsedTemplate, error) {
	list, err := s.store.List()
	if err != nil {
		return nil, WrapError(s.Name(), "ListTemplates", err)
	}
	return list, nil
}

// DeleteTemplate removes a stored template and its extracted working files.
func (s *TemplateFacadeService) DeleteTemplate(templateID string) error {
	if err := s.store.Delete(templateID); err != nil {
		return WrapError(s.Name(), "DeleteTemplate", err)
	}
	return nil
}

// ApplyTemplateData binds values to a stored template's placeholders and
// returns the bound copy. The stored template is left untouched.
func (s *TemplateFacadeService) ApplyTemplateData(templateID string, data template.DataBinding) (*template.ParsedTemplate, error) {
	t, err := s.store.Load(templateID)
	if err != nil {
		return nil, WrapError(s.Name(), "ApplyTemplateData", err)
	}
	if t == nil {
		return nil, WrapError(s.Name(), "ApplyTemplateData", fmt.Errorf("template not found: %s", templateID))
	}
	return template.ApplyData(t, data), nil
}

// ConvertToPresentation turns a bound (or raw) template into an exportable
// Presentation: one slide per template slide, the non-empty shape texts as
// content lines.
func (s *TemplateFacadeService) ConvertToPresentation(t *template.ParsedTemplate) *export.Presentation {
	pres := &export.Presentation{
		Title:     t.Name,
		CreatedAt: time.Now(),
	}
	for i, slide := range t.Slides {
		title := slide.Title
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}
		var lines []string
		for _, c := range slide.Content {
			text := strings.TrimSpace(c.Content)
			if text != "" {
				lines = append(lines, text)
			}
		}
		pres.Slides = append(pres.Slides, export.Slide{
			Title:        title,
			Content:      lines,
			Layout:       "content",
			SpeakerNotes: fmt.Sprintf("Generated from template: %s", t.Name),
		})
	}
	return pres
}

// TemplateTheme maps a template's parsed styles into export theme options.
func (s *TemplateFacadeService) TemplateTheme(t *template.ParsedTemplate) *export.TemplateTheme {
	return &export.TemplateTheme{
		ColorScheme:   append([]string(nil), t.Styles.ColorScheme...),
		FontFamilies:  append([]string(nil), t.Styles.FontFamilies...),
		MasterLayouts: append([]string(nil), t.Styles.MasterLayouts...),
	}
}

// CleanupTemplates removes stored templates older than maxAge and reports how
// many were removed.
func (s *TemplateFacadeService) CleanupTemplates(maxAge time.Duration) (int, error) {
	n, err := s.store.Cleanup(maxAge)
	if err != nil {
		return n, WrapError(s.Name(), "CleanupTemplates", err)
	}
	if n > 0 {
		s.log(fmt.Sprintf("cleanup removed %d expired templates", n))
	}
	return n, nil
}

func (s *TemplateFacadeService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}
