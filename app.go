package main

import (
	"context"
	"fmt"
	"time"

	"slideforge/config"
	"slideforge/export"
	"slideforge/logger"
	"slideforge/template"
)

// App wires the services together and is the single entry point the CLI talks
// to.
type App struct {
	ctx      context.Context
	logger   *logger.Logger
	registry *ServiceRegistry

	configService   *ConfigService
	templateService *TemplateFacadeService
	exportService   *ExportFacadeService
	llmService      *LLMService
	generator       *PresentationGenerator
}

func NewApp() *App {
	return &App{logger: logger.NewLogger()}
}

// Startup initializes logging, registers the services in dependency order and
// brings them up. Config and template services are critical: without them
// nothing else can run.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	if a.configService == nil {
		a.configService = NewConfigService(a.logger.Log)
	}
	storageDir, err := a.configService.GetStorageDir()
	if err == nil {
		if lerr := a.logger.Init(storageDir); lerr != nil {
			fmt.Printf("warning: file logging disabled: %v\n", lerr)
		}
	}

	a.registry = NewServiceRegistry(ctx, a.logger.Log)
	a.templateService = NewTemplateFacadeService(a.configService, a.logger.Log)
	a.exportService = NewExportFacadeService(a.configService, a.logger.Log)

	if err := a.registry.RegisterCritical(a.configService); err != nil {
		return err
	}
	if err := a.registry.RegisterCritical(a.templateService); err != nil {
		return err
	}
	if err := a.registry.Register(a.exportService); err != nil {
		return err
	}
	if err := a.registry.InitializeAll(); err != nil {
		return err
	}

	cfg, err := a.configService.GetConfig()
	if err != nil {
		return err
	}
	a.llmService = NewLLMService(cfg)
	a.generator = NewPresentationGenerator(a.llmService, a.logger.Log)

	a.configService.OnConfigChanged(func(cfg config.Config) {
		a.llmService = NewLLMService(cfg)
		a.generator = NewPresentationGenerator(a.llmService, a.logger.Log)
	})
	return nil
}

// Shutdown stops the services in reverse order and closes the log file.
func (a *App) Shutdown() {
	if a.registry != nil {
		a.registry.ShutdownAll()
	}
	a.logger.Close()
}

// GetConfig returns the current configuration.
func (a *App) GetConfig() (config.Config, error) {
	return a.configService.GetConfig()
}

// SaveConfig persists the configuration; the registered change callback
// rebuilds the LLM client with the new settings.
func (a *App) SaveConfig(cfg config.Config) error {
	return a.configService.SaveConfig(cfg)
}

// UploadTemplate parses a PPTX file on disk into a stored template.
func (a *App) UploadTemplate(filePath, originalFileName string) (*template.ParsedTemplate, error) {
	return a.templateService.UploadTemplate(filePath, originalFileName)
}

// GetTemplate returns a stored template, or nil when the id is unknown.
func (a *App) GetTemplate(templateID string) (*template.ParsedTemplate, error) {
	return a.templateService.GetTemplate(templateID)
}

// ListTemplates returns every stored template.
func (a *App) ListTemplates() ([]*template.ParsedTemplate, error) {
	return a.templateService.ListTemplates()
}

// DeleteTemplate removes a stored template.
func (a *App) DeleteTemplate(templateID string) error {
	return a.templateService.DeleteTemplate(templateID)
}

// ApplyTemplateData binds data values into a stored template's placeholders.
func (a *App) ApplyTemplateData(templateID string, data template.DataBinding) (*template.ParsedTemplate, error) {
	return a.templateService.ApplyTemplateData(templateID, data)
}

// ExportTemplate binds data into a template, converts it to a presentation
// and writes it out as a .pptx styled with the template's own theme.
func (a *App) ExportTemplate(templateID string, data template.DataBinding) (*export.ExportResult, error) {
	bound, err := a.templateService.ApplyTemplateData(templateID, data)
	if err != nil {
		return nil, err
	}
	pres := a.templateService.ConvertToPresentation(bound)
	opts := &export.ExportOptions{TemplateTheme: a.templateService.TemplateTheme(bound)}
	return a.exportService.ExportPresentation(*pres, opts)
}

// GeneratePresentation drafts a presentation with the LLM and exports it.
func (a *App) GeneratePresentation(req GenerateRequest) (*export.ExportResult, error) {
	pres, err := a.generator.Generate(a.ctx, req)
	if err != nil {
		return nil, err
	}
	return a.exportService.ExportPresentation(*pres, nil)
}

// RegenerateSlideContent asks the LLM for fresh bullet content for one slide.
func (a *App) RegenerateSlideContent(topic, slideTitle string) ([]string, error) {
	return a.generator.GenerateSlideContent(a.ctx, topic, slideTitle)
}

// ConvertTemplate turns a stored template into a generic presentation without
// binding data or exporting it.
func (a *App) ConvertTemplate(templateID string) (*export.Presentation, error) {
	t, err := a.templateService.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("template not found: %s", templateID)
	}
	return a.templateService.ConvertToPresentation(t), nil
}

// ExportPresentation writes an already-built presentation as a .pptx file.
func (a *App) ExportPresentation(pres export.Presentation, opts *export.ExportOptions) (*export.ExportResult, error) {
	return a.exportService.ExportPresentation(pres, opts)
}

// GetExportFile resolves an exported file name to its absolute path.
func (a *App) GetExportFile(fileName string) (string, error) {
	return a.exportService.GetExportFile(fileName)
}

// CleanupTemplates removes templates older than the configured retention.
func (a *App) CleanupTemplates() (int, error) {
	cfg, err := a.configService.GetConfig()
	if err != nil {
		return 0, err
	}
	maxAge := time.Duration(cfg.CleanupMaxAgeHr) * time.Hour
	return a.templateService.CleanupTemplates(maxAge)
}
