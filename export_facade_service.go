package main

import (
	"context"
	"fmt"

	"slideforge/export"
)

// ExportFacadeService wraps the PPTX writer and export-file retrieval behind
// the registry lifecycle.
type ExportFacadeService struct {
	configService *ConfigService
	logger        func(string)

	ppt *export.PPTService
}

func NewExportFacadeService(configService *ConfigService, logger func(string)) *ExportFacadeService {
	return &ExportFacadeService{
		configService: configService,
		logger:        logger,
	}
}

// Name implements the Service interface.
func (s *ExportFacadeService) Name() string {
	return "ExportFacadeService"
}

// Initialize implements the Service interface.
func (s *ExportFacadeService) Initialize(ctx context.Context) error {
	cfg, err := s.configService.GetConfig()
	if err != nil {
		return WrapError(s.Name(), "Initialize", err)
	}
	s.ppt = export.NewPPTService(cfg.ExportDir, s.logger)
	return nil
}

// Shutdown implements the Service interface.
func (s *ExportFacadeService) Shutdown() error {
	return nil
}

// ExportPresentation writes the presentation as a .pptx file into the export
// directory and returns the file details.
func (s *ExportFacadeService) ExportPresentation(pres export.Presentation, opts *export.ExportOptions) (*export.ExportResult, error) {
	if len(pres.Slides) == 0 {
		return nil, WrapError(s.Name(), "ExportPresentation", fmt.Errorf("presentation has no slides"))
	}
	result, err := s.ppt.GeneratePPTX(pres, opts)
	if err != nil {
		return nil, WrapError(s.Name(), "ExportPresentation", err)
	}
	if s.logger != nil {
		s.logger(fmt.Sprintf("exported %s (%d bytes)", result.FileName, result.Size))
	}
	return result, nil
}

// GetExportFile resolves a previously exported file name to its path,
// rejecting names that would escape the export directory.
func (s *ExportFacadeService) GetExportFile(fileName string) (string, error) {
	path, err := s.ppt.ResolveExportPath(fileName)
	if err != nil {
		return "", WrapError(s.Name(), "GetExportFile", err)
	}
	exists, _ := s.ppt.GetFileStats(path)
	if !exists {
		return "", WrapError(s.Name(), "GetExportFile", fmt.Errorf("export file not found: %s", fileName))
	}
	return path, nil
}

// StatExportFile reports whether an exported file exists and its size.
func (s *ExportFacadeService) StatExportFile(fileName string) (bool, int64, error) {
	path, err := s.ppt.ResolveExportPath(fileName)
	if err != nil {
		return false, 0, WrapError(s.Name(), "StatExportFile", err)
	}
	exists, size := s.ppt.GetFileStats(path)
	return exists, size, nil
}
