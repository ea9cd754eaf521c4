package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintel/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.80, cfg.OCR.MinMeanConfidence)
	assert.Equal(t, 0.15, cfg.OCR.MaxLowConfidence)
	assert.Equal(t, 40.0, cfg.OCR.MinDensity)
	assert.Equal(t, 0.60, cfg.OCR.LowConfidenceFloor)
	assert.Equal(t, "tesseract", cfg.OCR.Fast.Engine)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Fast.Languages)
	assert.Equal(t, 30*time.Second, cfg.OCR.Fast.Timeout)
	assert.Equal(t, 3, cfg.OCR.Accurate.PageSegMode)

	assert.Equal(t, 5, cfg.Structure.KeyValueWordCap)
	assert.Equal(t, ":-=", cfg.Structure.Separators)
	assert.Equal(t, 1.3, cfg.Structure.HeadingHeightFactor)
	assert.Equal(t, 8, cfg.Structure.HeadingWordCap)
	assert.Equal(t, 3, cfg.Structure.MaxHeadingLevels)
	assert.Equal(t, 1.5, cfg.Structure.ParagraphGapFactor)
	assert.Equal(t, 0.5, cfg.Structure.LineOverlap)

	assert.Equal(t, 4, cfg.Summary.MaxSentences)
	assert.Contains(t, cfg.Summary.Abbreviations, "e.g.")
	assert.Equal(t, "none", cfg.Table.Provider)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCINTEL_OCR_MIN_MEAN_CONFIDENCE", "0.9")
	t.Setenv("DOCINTEL_OCR_ACCURATE_ENGINE", "remote")
	t.Setenv("DOCINTEL_OCR_ACCURATE_ENDPOINT", "http://easyocr:8000/ocr")
	t.Setenv("DOCINTEL_OCR_FAST_LANGUAGES", "eng, deu")
	t.Setenv("DOCINTEL_PIPELINE_WORKERS", "8")
	t.Setenv("DOCINTEL_CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.OCR.MinMeanConfidence)
	assert.Equal(t, "remote", cfg.OCR.Accurate.Engine)
	assert.Equal(t, "http://easyocr:8000/ocr", cfg.OCR.Accurate.Endpoint)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Fast.Languages)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)

	t.Setenv("DOCINTEL_SERVER_PORT", ":7000")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_InvalidRejected(t *testing.T) {
	t.Setenv("DOCINTEL_OCR_ACCURATE_ENGINE", "remote")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr.accurate.endpoint")
}

func validConfig() config.Config {
	engine := config.OCREngineConfig{Engine: "tesseract", PoolSize: 1}
	return config.Config{
		OCR: config.OCRConfig{
			MinMeanConfidence:  0.8,
			MaxLowConfidence:   0.15,
			MinDensity:         40,
			LowConfidenceFloor: 0.6,
			Fast:               engine,
			Accurate:           engine,
		},
		Structure: config.StructureConfig{
			KeyValueWordCap: 5, Separators: ":", HeadingWordCap: 8, MaxHeadingLevels: 3, LineOverlap: 0.5,
		},
		Pipeline: config.PipelineConfig{Workers: 1},
		Table:    config.TableConfig{Provider: "none"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		errMsg string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"confidence above one", func(c *config.Config) { c.OCR.MinMeanConfidence = 1.2 }, "min_mean_confidence"},
		{"negative low fraction", func(c *config.Config) { c.OCR.MaxLowConfidence = -0.1 }, "max_low_confidence"},
		{"negative density", func(c *config.Config) { c.OCR.MinDensity = -1 }, "min_density"},
		{"unknown engine", func(c *config.Config) { c.OCR.Fast.Engine = "abbyy" }, "unknown engine"},
		{"zero pool", func(c *config.Config) { c.OCR.Accurate.PoolSize = 0 }, "pool_size"},
		{"no separators", func(c *config.Config) { c.Structure.Separators = "" }, "separators"},
		{"overlap out of range", func(c *config.Config) { c.Structure.LineOverlap = 1 }, "line_overlap"},
		{"no workers", func(c *config.Config) { c.Pipeline.Workers = 0 }, "workers"},
		{"http table without endpoint", func(c *config.Config) { c.Table.Provider = "http" }, "table.endpoint"},
		{"unknown table provider", func(c *config.Config) { c.Table.Provider = "camelot" }, "table.provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "docs", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/docs?sslmode=disable", db.DSN())
}
