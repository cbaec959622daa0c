// Package config loads the cellscope YAML configuration.
//
// Load decodes a file over Default; flags are applied by the caller and
// Validate runs last.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Capture   CaptureConfig   `yaml:"capture"`
	Display   DisplayConfig   `yaml:"display"`
	Log       LogConfig       `yaml:"log"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Selector  SelectorConfig  `yaml:"selector"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type CaptureConfig struct {
	Source    string        `yaml:"source" validate:"oneof=camera folder"`
	Device    string        `yaml:"device"`
	Width     int           `yaml:"width" validate:"gt=0"`
	Height    int           `yaml:"height" validate:"gt=0"`
	FPS       int           `yaml:"fps" validate:"gte=0"`
	Dir       string        `yaml:"dir" validate:"required_if=Source folder"`
	Follow    bool          `yaml:"follow"`
	Idle      time.Duration `yaml:"idle" validate:"gte=0"`
	MaxFrames int           `yaml:"max_frames" validate:"gte=0"`
}

type DisplayConfig struct {
	Mode        string `yaml:"mode" validate:"oneof=none save"`
	Dir         string `yaml:"dir" validate:"required_if=Mode save"`
	Format      string `yaml:"format" validate:"oneof=png jpeg"`
	Every       int    `yaml:"every" validate:"gte=1"`
	JPEGQuality int    `yaml:"jpeg_quality" validate:"min=1,max=100"`
	QuitKey     bool   `yaml:"quit_key"`
	Styled      bool   `yaml:"styled"`
}

type LogConfig struct {
	Path   string `yaml:"path" validate:"required"`
	JSONL  string `yaml:"jsonl"`
	SQLite string `yaml:"sqlite"`
}

type KnowledgeConfig struct {
	Microbes  string `yaml:"microbes"`
	Sequences string `yaml:"sequences"`
}

type SelectorConfig struct {
	Kind  string   `yaml:"kind" validate:"oneof=random fixed sequence"`
	Seed  uint64   `yaml:"seed"`
	Names []string `yaml:"names" validate:"required_unless=Kind random,dive,required"`
}

type MetricsConfig struct {
	Addr      string `yaml:"addr" validate:"omitempty,hostname_port"`
	Namespace string `yaml:"namespace" validate:"required"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns the built-in configuration: camera capture at 640x480,
// headless display, CSV log in the working directory.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Source: "camera",
			Width:  640,
			Height: 480,
		},
		Display: DisplayConfig{
			Mode:        "none",
			Format:      "png",
			Every:       1,
			JPEGQuality: 90,
			QuitKey:     true,
		},
		Log:      LogConfig{Path: "disease_detection_log.csv"},
		Selector: SelectorConfig{Kind: "random"},
		Metrics:  MetricsConfig{Namespace: "cellscope"},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

// Decode reads YAML from r over Default. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Load reads path, or returns Default when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer fh.Close()
	cfg, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field constraint and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := yamlPath(e.Namespace())
	switch e.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, boundOf(e))
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func boundOf(e validator.FieldError) string {
	if e.Tag() == "gt" {
		return e.Param() + " (exclusive)"
	}
	return e.Param()
}

// yamlPath drops the root type from "Config.capture.max_frames".
func yamlPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}
