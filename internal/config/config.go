package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "cryptocap/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig locates the snapshot and the generated artifacts
type DataConfig struct {
	InputFile    string `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	WorkbookName string `yaml:"workbook_name" envconfig:"WORKBOOK_NAME" validate:"required"`
	ExportCSV    bool   `yaml:"export_csv" envconfig:"EXPORT_CSV"`
}

// AnalysisConfig holds the ranking sizes and capitalization thresholds
type AnalysisConfig struct {
	TopN              int     `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`
	MoversN           int     `yaml:"movers_n" envconfig:"MOVERS_N" validate:"min=1"`
	LargeCapThreshold float64 `yaml:"large_cap_threshold" envconfig:"LARGE_CAP_THRESHOLD" validate:"gte=0"`
	BigCapMin         float64 `yaml:"big_cap_min" envconfig:"BIG_CAP_MIN" validate:"gtfield=MicroCapMin"`
	MicroCapMin       float64 `yaml:"micro_cap_min" envconfig:"MICRO_CAP_MIN" validate:"gte=0"`
	RankingOrder      string  `yaml:"ranking_order" envconfig:"RANKING_ORDER" validate:"oneof=trust verify sort"`
}

// ChartsConfig is the explicit plot style handed to the chart renderer
type ChartsConfig struct {
	Style        string   `yaml:"style" envconfig:"STYLE" validate:"required"`
	Width        uint     `yaml:"width" envconfig:"WIDTH" validate:"min=100"`
	Height       uint     `yaml:"height" envconfig:"HEIGHT" validate:"min=100"`
	ShowLegend   bool     `yaml:"show_legend" envconfig:"SHOW_LEGEND"`
	TopCapColors []string `yaml:"top_cap_colors" envconfig:"TOP_CAP_COLORS"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing precedence. A .env file in the working directory
// is loaded into the environment first when present.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", configFile)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize fixes values that have a single supported setting
func (c *Config) normalize() {
	// JSON is the only log format
	c.Logging.Format = "json"
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Analysis.RankingOrder = strings.ToLower(c.Analysis.RankingOrder)

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), nil)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    DefaultRateLimit,
			RateLimitBurst:  DefaultBurstSize,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Data: DataConfig{
			InputFile:    DefaultInputFile,
			OutputDir:    DefaultOutputDir,
			WorkbookName: DefaultWorkbookName,
			ExportCSV:    true,
		},
		Analysis: AnalysisConfig{
			TopN:              DefaultTopN,
			MoversN:           DefaultMoversN,
			LargeCapThreshold: LargeCapThresholdUSD,
			BigCapMin:         BigCapMinUSD,
			MicroCapMin:       MicroCapMinUSD,
			RankingOrder:      "trust",
		},
		Charts: ChartsConfig{
			Style:        DefaultChartStyle,
			Width:        640,
			Height:       384,
			ShowLegend:   false,
			TopCapColors: append([]string(nil), DefaultTopCapColors...),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    ServiceName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
