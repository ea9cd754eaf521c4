package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintel/internal/config"
	"docintel/internal/pipeline"
)

func remoteOCR(endpoint string) config.OCRConfig {
	return config.OCRConfig{
		MinMeanConfidence:  0.8,
		MaxLowConfidence:   0.15,
		MinDensity:         40,
		LowConfidenceFloor: 0.6,
		Fast:               config.OCREngineConfig{Engine: "remote", Endpoint: endpoint, PoolSize: 2, Timeout: time.Second},
		Accurate:           config.OCREngineConfig{Engine: "remote", Endpoint: endpoint, PoolSize: 1, Timeout: time.Second},
	}
}

func TestPolicy(t *testing.T) {
	p := pipeline.Policy(remoteOCR("http://ocr"))
	assert.Equal(t, 0.8, p.MinMeanConfidence)
	assert.Equal(t, 0.15, p.MaxLowConfidence)
	assert.Equal(t, 40.0, p.MinDensity)
	assert.Equal(t, 0.6, p.LowConfidenceFloor)
}

func TestNewOrchestrator_UnknownEngine(t *testing.T) {
	cfg := remoteOCR("http://ocr")
	cfg.Accurate.Engine = "abbyy"

	_, err := pipeline.NewOrchestrator(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "abbyy")
}

func TestBuild(t *testing.T) {
	cfg := &config.Config{
		OCR:       remoteOCR("http://ocr"),
		Structure: config.StructureConfig{KeyValueWordCap: 5, Separators: ":-=", HeadingHeightFactor: 1.3, HeadingWordCap: 8, MaxHeadingLevels: 3, ParagraphGapFactor: 1.5, LineOverlap: 0.5},
		Summary:   config.SummaryConfig{MaxSentences: 3},
		Pipeline:  config.PipelineConfig{Workers: 2, MaxFileSizeMB: 1},
		Table:     config.TableConfig{Provider: "none"},
	}

	svc, err := pipeline.Build(cfg, nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.Equal(t, int64(1<<20), pipeline.MaxFileSize(cfg.Pipeline))
}

func TestBuild_BadTableProvider(t *testing.T) {
	cfg := &config.Config{OCR: remoteOCR("http://ocr"), Table: config.TableConfig{Provider: "camelot"}}

	_, err := pipeline.Build(cfg, nil, nil)

	assert.Error(t, err)
}
