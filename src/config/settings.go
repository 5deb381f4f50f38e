package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

type Settings struct {
	Env      string         `toml:"env" validate:"oneof=development production"`
	Quiz     QuizConfig     `toml:"quiz"`
	Ollama   OllamaConfig   `toml:"ollama"`
	Database DatabaseConfig `toml:"database"`
}

type QuizConfig struct {
	Rounds      int  `toml:"rounds" validate:"min=1,max=100"`
	MaxAttempts int  `toml:"max_attempts" validate:"min=0,max=10"`
	Strict      bool `toml:"strict"`
}

type OllamaConfig struct {
	URL        string   `toml:"url" validate:"required,url"`
	Model      string   `toml:"model" validate:"required"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries" validate:"min=0,max=5"`
}

type DatabaseConfig struct {
	// Path overrides the XDG data location when set
	Path string `toml:"path"`
}

// Duration decodes "90s" style strings from TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultSettings returns the settings used when no config file exists
func DefaultSettings() *Settings {
	return &Settings{
		Env: "development",
		Quiz: QuizConfig{
			Rounds:      5,
			MaxAttempts: 1,
			Strict:      false,
		},
		Ollama: OllamaConfig{
			URL:        "http://localhost:11434",
			Model:      "llama3.1",
			Timeout:    Duration{60 * time.Second},
			MaxRetries: 2,
		},
	}
}

// LoadSettings reads config.toml from the config directory
func LoadSettings() (*Settings, error) {
	configPath, err := GetConfigFile()
	if err != nil {
		return DefaultSettings(), nil
	}
	return LoadSettingsFrom(configPath)
}

// LoadSettingsFrom decodes the file at path over the defaults. A missing
// file is not an error.
func LoadSettingsFrom(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings and reports every invalid field at once
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Settings.Quiz.MaxAttempts" to "quiz.maxattempts"
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}
