package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	OCR       OCRConfig
	Structure StructureConfig
	Summary   SummaryConfig
	Pipeline  PipelineConfig
	Table     TableConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings. An empty Bucket disables source uploads.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OCREngineConfig selects and tunes one OCR engine.
type OCREngineConfig struct {
	Engine      string        `mapstructure:"engine"`
	Languages   []string      `mapstructure:"languages"`
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PoolSize    int           `mapstructure:"pool_size"`
	PageSegMode int           `mapstructure:"page_seg_mode"`
}

// OCRConfig holds the fallback acceptance thresholds and both engines.
type OCRConfig struct {
	MinMeanConfidence  float64 `mapstructure:"min_mean_confidence"`
	MaxLowConfidence   float64 `mapstructure:"max_low_confidence"`
	MinDensity         float64 `mapstructure:"min_density"`
	LowConfidenceFloor float64 `mapstructure:"low_confidence_floor"`
	Fast               OCREngineConfig
	Accurate           OCREngineConfig
}

// StructureConfig holds the text structuring heuristics. Both word caps are
// exclusive: a key-value label or a shouted heading needs fewer words.
type StructureConfig struct {
	KeyValueWordCap     int     `mapstructure:"key_value_word_cap"`
	Separators          string  `mapstructure:"separators"`
	HeadingHeightFactor float64 `mapstructure:"heading_height_factor"`
	HeadingWordCap      int     `mapstructure:"heading_word_cap"`
	MaxHeadingLevels    int     `mapstructure:"max_heading_levels"`
	ParagraphGapFactor  float64 `mapstructure:"paragraph_gap_factor"`
	LineOverlap         float64 `mapstructure:"line_overlap"`
}

// SummaryConfig holds keyword summarizer settings.
type SummaryConfig struct {
	MaxSentences  int      `mapstructure:"max_sentences"`
	Abbreviations []string `mapstructure:"abbreviations"`
}

// PipelineConfig holds document-level processing settings.
type PipelineConfig struct {
	Workers       int           `mapstructure:"workers"`
	MaxFileSizeMB int64         `mapstructure:"max_file_size_mb"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// TableConfig selects the table extraction collaborator.
type TableConfig struct {
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	o := c.OCR
	if o.MinMeanConfidence < 0 || o.MinMeanConfidence > 1 {
		return fmt.Errorf("ocr.min_mean_confidence must be in [0,1], got %v", o.MinMeanConfidence)
	}
	if o.MaxLowConfidence < 0 || o.MaxLowConfidence > 1 {
		return fmt.Errorf("ocr.max_low_confidence must be in [0,1], got %v", o.MaxLowConfidence)
	}
	if o.LowConfidenceFloor < 0 || o.LowConfidenceFloor > 1 {
		return fmt.Errorf("ocr.low_confidence_floor must be in [0,1], got %v", o.LowConfidenceFloor)
	}
	if o.MinDensity < 0 {
		return fmt.Errorf("ocr.min_density must not be negative, got %v", o.MinDensity)
	}
	for name, e := range map[string]OCREngineConfig{"fast": o.Fast, "accurate": o.Accurate} {
		switch e.Engine {
		case "tesseract":
		case "remote":
			if e.Endpoint == "" {
				return fmt.Errorf("ocr.%s.endpoint is required for the remote engine", name)
			}
		default:
			return fmt.Errorf("ocr.%s.engine: unknown engine %q", name, e.Engine)
		}
		if e.PoolSize <= 0 {
			return fmt.Errorf("ocr.%s.pool_size must be positive, got %d", name, e.PoolSize)
		}
	}
	s := c.Structure
	if s.KeyValueWordCap <= 0 || s.HeadingWordCap <= 0 {
		return fmt.Errorf("structure word caps must be positive")
	}
	if s.Separators == "" {
		return fmt.Errorf("structure.separators must not be empty")
	}
	if s.MaxHeadingLevels <= 0 {
		return fmt.Errorf("structure.max_heading_levels must be positive, got %d", s.MaxHeadingLevels)
	}
	if s.LineOverlap <= 0 || s.LineOverlap >= 1 {
		return fmt.Errorf("structure.line_overlap must be in (0,1), got %v", s.LineOverlap)
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive, got %d", c.Pipeline.Workers)
	}
	switch c.Table.Provider {
	case "none":
	case "http":
		if c.Table.Endpoint == "" {
			return fmt.Errorf("table.endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("table.provider: unknown provider %q", c.Table.Provider)
	}
	return nil
}

// Load reads configuration from environment variables with the DOCINTEL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docintel")
	v.SetDefault("db.password", "docintel_secret")
	v.SetDefault("db.name", "docintel_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// OCR defaults
	v.SetDefault("ocr.min_mean_confidence", 0.80)
	v.SetDefault("ocr.max_low_confidence", 0.15)
	v.SetDefault("ocr.min_density", 40.0)
	v.SetDefault("ocr.low_confidence_floor", 0.60)
	v.SetDefault("ocr.fast.engine", "tesseract")
	v.SetDefault("ocr.fast.languages", "eng")
	v.SetDefault("ocr.fast.endpoint", "")
	v.SetDefault("ocr.fast.timeout", "30s")
	v.SetDefault("ocr.fast.pool_size", 4)
	v.SetDefault("ocr.fast.page_seg_mode", 6)
	v.SetDefault("ocr.accurate.engine", "tesseract")
	v.SetDefault("ocr.accurate.languages", "eng")
	v.SetDefault("ocr.accurate.endpoint", "")
	v.SetDefault("ocr.accurate.timeout", "120s")
	v.SetDefault("ocr.accurate.pool_size", 2)
	v.SetDefault("ocr.accurate.page_seg_mode", 3)

	// Structure defaults
	v.SetDefault("structure.key_value_word_cap", 5)
	v.SetDefault("structure.separators", ":-=")
	v.SetDefault("structure.heading_height_factor", 1.3)
	v.SetDefault("structure.heading_word_cap", 8)
	v.SetDefault("structure.max_heading_levels", 3)
	v.SetDefault("structure.paragraph_gap_factor", 1.5)
	v.SetDefault("structure.line_overlap", 0.5)

	// Summary defaults
	v.SetDefault("summary.max_sentences", 4)
	v.SetDefault("summary.abbreviations", "mr.,mrs.,ms.,dr.,prof.,sr.,jr.,st.,vs.,etc.,e.g.,i.e.,inc.,ltd.,co.,no.,fig.,approx.")

	// Pipeline defaults
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.max_file_size_mb", 50)
	v.SetDefault("pipeline.timeout", "10m")

	// Table defaults
	v.SetDefault("table.provider", "none")
	v.SetDefault("table.endpoint", "")
	v.SetDefault("table.timeout", "60s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "DOCINTEL_SERVER_PORT",
		"server.read_timeout":             "DOCINTEL_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "DOCINTEL_SERVER_WRITE_TIMEOUT",
		"server.environment":              "DOCINTEL_SERVER_ENVIRONMENT",
		"db.host":                         "DOCINTEL_DB_HOST",
		"db.port":                         "DOCINTEL_DB_PORT",
		"db.user":                         "DOCINTEL_DB_USER",
		"db.password":                     "DOCINTEL_DB_PASSWORD",
		"db.name":                         "DOCINTEL_DB_NAME",
		"db.sslmode":                      "DOCINTEL_DB_SSLMODE",
		"db.max_open":                     "DOCINTEL_DB_MAX_OPEN",
		"db.max_idle":                     "DOCINTEL_DB_MAX_IDLE",
		"s3.region":                       "DOCINTEL_S3_REGION",
		"s3.bucket":                       "DOCINTEL_S3_BUCKET",
		"s3.endpoint":                     "DOCINTEL_S3_ENDPOINT",
		"s3.access_key":                   "DOCINTEL_S3_ACCESS_KEY",
		"s3.secret_key":                   "DOCINTEL_S3_SECRET_KEY",
		"s3.presign_expiry":               "DOCINTEL_S3_PRESIGN_EXPIRY",
		"log.level":                       "DOCINTEL_LOG_LEVEL",
		"log.format":                      "DOCINTEL_LOG_FORMAT",
		"cors.allowed_origins":            "DOCINTEL_CORS_ALLOWED_ORIGINS",
		"ocr.min_mean_confidence":         "DOCINTEL_OCR_MIN_MEAN_CONFIDENCE",
		"ocr.max_low_confidence":          "DOCINTEL_OCR_MAX_LOW_CONFIDENCE",
		"ocr.min_density":                 "DOCINTEL_OCR_MIN_DENSITY",
		"ocr.low_confidence_floor":        "DOCINTEL_OCR_LOW_CONFIDENCE_FLOOR",
		"ocr.fast.engine":                 "DOCINTEL_OCR_FAST_ENGINE",
		"ocr.fast.languages":              "DOCINTEL_OCR_FAST_LANGUAGES",
		"ocr.fast.endpoint":               "DOCINTEL_OCR_FAST_ENDPOINT",
		"ocr.fast.timeout":                "DOCINTEL_OCR_FAST_TIMEOUT",
		"ocr.fast.pool_size":              "DOCINTEL_OCR_FAST_POOL_SIZE",
		"ocr.fast.page_seg_mode":          "DOCINTEL_OCR_FAST_PAGE_SEG_MODE",
		"ocr.accurate.engine":             "DOCINTEL_OCR_ACCURATE_ENGINE",
		"ocr.accurate.languages":          "DOCINTEL_OCR_ACCURATE_LANGUAGES",
		"ocr.accurate.endpoint":           "DOCINTEL_OCR_ACCURATE_ENDPOINT",
		"ocr.accurate.timeout":            "DOCINTEL_OCR_ACCURATE_TIMEOUT",
		"ocr.accurate.pool_size":          "DOCINTEL_OCR_ACCURATE_POOL_SIZE",
		"ocr.accurate.page_seg_mode":      "DOCINTEL_OCR_ACCURATE_PAGE_SEG_MODE",
		"structure.key_value_word_cap":    "DOCINTEL_STRUCTURE_KEY_VALUE_WORD_CAP",
		"structure.separators":            "DOCINTEL_STRUCTURE_SEPARATORS",
		"structure.heading_height_factor": "DOCINTEL_STRUCTURE_HEADING_HEIGHT_FACTOR",
		"structure.heading_word_cap":      "DOCINTEL_STRUCTURE_HEADING_WORD_CAP",
		"structure.max_heading_levels":    "DOCINTEL_STRUCTURE_MAX_HEADING_LEVELS",
		"structure.paragraph_gap_factor":  "DOCINTEL_STRUCTURE_PARAGRAPH_GAP_FACTOR",
		"structure.line_overlap":          "DOCINTEL_STRUCTURE_LINE_OVERLAP",
		"summary.max_sentences":           "DOCINTEL_SUMMARY_MAX_SENTENCES",
		"summary.abbreviations":           "DOCINTEL_SUMMARY_ABBREVIATIONS",
		"pipeline.workers":                "DOCINTEL_PIPELINE_WORKERS",
		"pipeline.max_file_size_mb":       "DOCINTEL_PIPELINE_MAX_FILE_SIZE_MB",
		"pipeline.timeout":                "DOCINTEL_PIPELINE_TIMEOUT",
		"table.provider":                  "DOCINTEL_TABLE_PROVIDER",
		"table.endpoint":                  "DOCINTEL_TABLE_ENDPOINT",
		"table.timeout":                   "DOCINTEL_TABLE_TIMEOUT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if DOCINTEL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCINTEL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.OCR = OCRConfig{
		MinMeanConfidence:  v.GetFloat64("ocr.min_mean_confidence"),
		MaxLowConfidence:   v.GetFloat64("ocr.max_low_confidence"),
		MinDensity:         v.GetFloat64("ocr.min_density"),
		LowConfidenceFloor: v.GetFloat64("ocr.low_confidence_floor"),
		Fast:               engineConfig(v, "ocr.fast"),
		Accurate:           engineConfig(v, "ocr.accurate"),
	}

	cfg.Structure = StructureConfig{
		KeyValueWordCap:     v.GetInt("structure.key_value_word_cap"),
		Separators:          v.GetString("structure.separators"),
		HeadingHeightFactor: v.GetFloat64("structure.heading_height_factor"),
		HeadingWordCap:      v.GetInt("structure.heading_word_cap"),
		MaxHeadingLevels:    v.GetInt("structure.max_heading_levels"),
		ParagraphGapFactor:  v.GetFloat64("structure.paragraph_gap_factor"),
		LineOverlap:         v.GetFloat64("structure.line_overlap"),
	}

	cfg.Summary = SummaryConfig{
		MaxSentences:  v.GetInt("summary.max_sentences"),
		Abbreviations: splitList(v.GetString("summary.abbreviations")),
	}

	cfg.Pipeline = PipelineConfig{
		Workers:       v.GetInt("pipeline.workers"),
		MaxFileSizeMB: v.GetInt64("pipeline.max_file_size_mb"),
		Timeout:       v.GetDuration("pipeline.timeout"),
	}

	cfg.Table = TableConfig{
		Provider: v.GetString("table.provider"),
		Endpoint: v.GetString("table.endpoint"),
		Timeout:  v.GetDuration("table.timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func engineConfig(v *viper.Viper, prefix string) OCREngineConfig {
	return OCREngineConfig{
		Engine:      v.GetString(prefix + ".engine"),
		Languages:   splitList(v.GetString(prefix + ".languages")),
		Endpoint:    v.GetString(prefix + ".endpoint"),
		Timeout:     v.GetDuration(prefix + ".timeout"),
		PoolSize:    v.GetInt(prefix + ".pool_size"),
		PageSegMode: v.GetInt(prefix + ".page_seg_mode"),
	}
}

// splitList parses a comma-separated string, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
