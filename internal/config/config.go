// Package config loads the application configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Default values applied for fields the config file leaves unset.
const (
	DefaultWidth             = 640
	DefaultHeight            = 480
	DefaultIdleFPS           = 5
	DefaultActiveFPS         = 15
	DefaultStabilityWindowMs = 500
	DefaultIdleTimeoutMs     = 2000
	DefaultMotionThreshold   = 1.0
	DefaultMaxHands          = 2
	DefaultMinDetectionConf  = 0.7
	DefaultMinTrackingConf   = 0.5
	DefaultListenAddress     = ":8080"
	DefaultLogLevel          = "info"
)

// CameraConfig configures the capture device.
type CameraConfig struct {
	DeviceID int  `toml:"device_id"`
	Width    int  `toml:"width"`
	Height   int  `toml:"height"`
	IdleFPS  int  `toml:"idle_fps"`
	ActiveFPS int `toml:"active_fps"`
	// Mirror flips frames horizontally before detection for the
	// selfie-style view users expect from a facing camera.
	Mirror bool `toml:"mirror"`
}

// EngineConfig configures the gesture resolution engine.
type EngineConfig struct {
	// StabilityWindowMs is how long a new reading must be sustained
	// before it is committed.
	StabilityWindowMs int `toml:"stability_window_ms"`
	// IdleTimeoutMs is how long after the last motion the pipeline
	// drops back to the idle frame rate.
	IdleTimeoutMs int `toml:"idle_timeout_ms"`
	// MotionThreshold is the percentage of changed pixels that counts
	// as motion.
	MotionThreshold float64 `toml:"motion_threshold"`
	// MaxHands is the maximum number of hands to track (1 or 2).
	MaxHands int `toml:"max_hands"`
	// MinDetectionConfidence and MinTrackingConfidence are passed to
	// the landmark detector.
	MinDetectionConfidence float64 `toml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `toml:"min_tracking_confidence"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	StaticDir     string `toml:"static_dir"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	// DatabasePath is the SQLite file; empty means ~/.handcount/handcount.db.
	DatabasePath string `toml:"database_path"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Config holds the full application configuration.
type Config struct {
	Camera  CameraConfig  `toml:"camera"`
	Engine  EngineConfig  `toml:"engine"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			IdleFPS:   DefaultIdleFPS,
			ActiveFPS: DefaultActiveFPS,
			Mirror:    true,
		},
		Engine: EngineConfig{
			StabilityWindowMs:      DefaultStabilityWindowMs,
			IdleTimeoutMs:          DefaultIdleTimeoutMs,
			MotionThreshold:        DefaultMotionThreshold,
			MaxHands:               DefaultMaxHands,
			MinDetectionConfidence: DefaultMinDetectionConf,
			MinTrackingConfidence:  DefaultMinTrackingConf,
		},
		Server: ServerConfig{
			ListenAddress: DefaultListenAddress,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads the configuration file at path, fills unset fields with
// defaults, and validates the result. A missing file is not an error:
// the defaults are returned, matching how the tool runs out of the box.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera resolution %dx%d is invalid", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		return fmt.Errorf("camera fps must be positive (idle=%d, active=%d)", c.Camera.IdleFPS, c.Camera.ActiveFPS)
	}
	if c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return fmt.Errorf("idle fps %d exceeds active fps %d", c.Camera.IdleFPS, c.Camera.ActiveFPS)
	}
	if c.Engine.StabilityWindowMs <= 0 {
		return fmt.Errorf("stability window %dms must be positive", c.Engine.StabilityWindowMs)
	}
	if c.Engine.MaxHands < 1 || c.Engine.MaxHands > 2 {
		return fmt.Errorf("max_hands must be 1 or 2, got %d", c.Engine.MaxHands)
	}
	if c.Engine.MinDetectionConfidence < 0 || c.Engine.MinDetectionConfidence > 1 {
		return fmt.Errorf("min_detection_confidence %f out of [0,1]", c.Engine.MinDetectionConfidence)
	}
	if c.Engine.MinTrackingConfidence < 0 || c.Engine.MinTrackingConfidence > 1 {
		return fmt.Errorf("min_tracking_confidence %f out of [0,1]", c.Engine.MinTrackingConfidence)
	}
	if c.Server.ListenAddress == "" {
		return errors.New("server listen_address must not be empty")
	}
	return nil
}
