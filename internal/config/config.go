package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Model   ModelConfig   `mapstructure:"model"`
	Swap    SwapConfig    `mapstructure:"swap"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	DataDir     string `mapstructure:"data_dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// LogConfig contains log settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DBConfig contains database settings (SQLite).
type DBConfig struct {
	File string `mapstructure:"file"`
}

// ModelConfig describes the model artifacts and detector tuning.
// Artifact paths are resolved here, once, by the deployment layer;
// the processing core never resolves paths itself.
type ModelConfig struct {
	DetectorPath  string  `mapstructure:"detector_path"`  // SCRFD ONNX model
	EncoderPath   string  `mapstructure:"encoder_path"`   // ArcFace ONNX model
	SwapperPath   string  `mapstructure:"swapper_path"`   // Inswapper ONNX model
	EmapPath      string  `mapstructure:"emap_path"`      // 512x512 latent projection matrix
	RuntimeLib    string  `mapstructure:"runtime_lib"`    // libonnxruntime shared library
	DetectionSize int     `mapstructure:"detection_size"` // detector input resolution
	ConfThreshold float64 `mapstructure:"conf_threshold"` // minimum detector confidence
	NMSThreshold  float64 `mapstructure:"nms_threshold"`  // IoU threshold for suppression
	BlurSize      int     `mapstructure:"blur_size"`      // blend mask feathering
}

// SwapConfig contains request-level swap settings.
type SwapConfig struct {
	OutputFormat string `mapstructure:"output_format"` // "jpg" or "png"
}

// MQTTConfig configures the optional swap-event publisher.
type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	ClientID string `mapstructure:"client_id"`
	Topic    string `mapstructure:"topic"`
}

// CleanupConfig contains history retention settings.
type CleanupConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// Load reads the configuration from file, environment variables and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Warnf("Config file %s does not exist, using defaults", configPath)
		} else {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			log.Infof("Config loaded from %s", configPath)
		}
	}

	// Environment variables overlay the file values
	v.AutomaticEnv()
	v.SetEnvPrefix("FACESWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ensureDirectories(&cfg); err != nil {
		return nil, fmt.Errorf("failed to create required directories: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for all configuration keys.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.data_dir", "/data")
	v.SetDefault("server.max_upload_mb", 16)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// DB defaults
	v.SetDefault("db.file", "/data/faceswap.db")

	// Model defaults; the inswapper stack expects 640x640 detection input
	v.SetDefault("model.detector_path", "/models/scrfd_10g.onnx")
	v.SetDefault("model.encoder_path", "/models/arcface.onnx")
	v.SetDefault("model.swapper_path", "/models/inswapper_128.onnx")
	v.SetDefault("model.emap_path", "/models/emap.bin")
	v.SetDefault("model.runtime_lib", "/usr/lib/libonnxruntime.so")
	v.SetDefault("model.detection_size", 640)
	v.SetDefault("model.conf_threshold", 0.5)
	v.SetDefault("model.nms_threshold", 0.4)
	v.SetDefault("model.blur_size", 21)

	// Swap defaults
	v.SetDefault("swap.output_format", "jpg")

	// MQTT defaults
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "faceswap-go")
	v.SetDefault("mqtt.topic", "faceswap/events")

	// Cleanup defaults
	v.SetDefault("cleanup.retention_days", 30)
}

// ensureDirectories makes sure all required directories exist.
func ensureDirectories(cfg *Config) error {
	if cfg.Server.DataDir != "" {
		if err := os.MkdirAll(cfg.Server.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if cfg.Log.File != "" {
		logDir := filepath.Dir(cfg.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if cfg.DB.File != "" {
		dbDir := filepath.Dir(cfg.DB.File)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}
