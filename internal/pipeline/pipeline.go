// Package pipeline wires configured components into a DocumentService.
package pipeline

import (
	"fmt"
	"log"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/loader"
	"docintel/internal/ocr"
	_ "docintel/internal/ocr/remote"
	_ "docintel/internal/ocr/tesseract"
	"docintel/internal/port"
	"docintel/internal/preprocess"
	"docintel/internal/service"
	"docintel/internal/structure"
	"docintel/internal/summary"
	"docintel/internal/table"
)

// Policy builds the fallback acceptance policy from config.
func Policy(cfg config.OCRConfig) ocr.Policy {
	return ocr.Policy{
		MinMeanConfidence:  cfg.MinMeanConfidence,
		MaxLowConfidence:   cfg.MaxLowConfidence,
		MinDensity:         cfg.MinDensity,
		LowConfidenceFloor: cfg.LowConfidenceFloor,
	}
}

// NewOrchestrator creates both engine pools and the fallback orchestrator.
func NewOrchestrator(cfg config.OCRConfig) (*ocr.Orchestrator, error) {
	fast, err := ocr.NewPoolFromConfig(domain.EngineFast, cfg.Fast)
	if err != nil {
		return nil, err
	}
	accurate, err := ocr.NewPoolFromConfig(domain.EngineAccurate, cfg.Accurate)
	if err != nil {
		return nil, err
	}
	log.Printf("pipeline.NewOrchestrator: fast=%s x%d, accurate=%s x%d",
		fast.Name(), fast.Size(), accurate.Name(), accurate.Size())

	return ocr.NewOrchestrator(preprocess.NewSelector(preprocess.DefaultParams()), fast, accurate, ocr.OrchestratorConfig{
		Policy:          Policy(cfg),
		FastTimeout:     cfg.Fast.Timeout,
		AccurateTimeout: cfg.Accurate.Timeout,
	}), nil
}

// Build assembles the document service. storage and repo may be nil.
func Build(cfg *config.Config, storage port.ObjectStorage, repo port.DocumentRepository) (service.DocumentService, error) {
	orch, err := NewOrchestrator(cfg.OCR)
	if err != nil {
		return nil, fmt.Errorf("initializing ocr: %w", err)
	}
	tables, err := table.New(cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("initializing table extractor: %w", err)
	}

	abbreviations := cfg.Summary.Abbreviations
	if len(abbreviations) == 0 {
		abbreviations = summary.DefaultAbbreviations
	}

	return service.NewDocumentService(
		loader.New(),
		orch,
		structure.New(structure.ConfigFrom(cfg.Structure)),
		summary.New(abbreviations),
		tables,
		storage,
		repo,
		service.ProcessingConfig{
			Workers:       cfg.Pipeline.Workers,
			MaxFileSize:   MaxFileSize(cfg.Pipeline),
			MaxSentences:  cfg.Summary.MaxSentences,
			LineOverlap:   cfg.Structure.LineOverlap,
			Timeout:       cfg.Pipeline.Timeout,
			Bucket:        cfg.S3.Bucket,
			PresignExpiry: cfg.S3.PresignExpiry,
		},
	), nil
}

// MaxFileSize returns the upload limit in bytes.
func MaxFileSize(cfg config.PipelineConfig) int64 {
	return cfg.MaxFileSizeMB << 20
}
