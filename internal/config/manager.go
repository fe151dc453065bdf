package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/examdeck/examdeck/internal/errors"
	"github.com/examdeck/examdeck/internal/logger"
)

const (
	// SettingsDir is the directory for the settings file, under the
	// user's home.
	SettingsDir = ".config/examdeck"
	// SettingsFile is the settings file name.
	SettingsFile = "settings.yaml"
)

// DefaultPath returns the standard settings file location.
// Falls back to the working directory if the home dir cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return SettingsFile
	}
	return filepath.Join(home, SettingsDir, SettingsFile)
}

// Manager owns the in-memory settings and their durable copy. Persistence
// failures are logged and swallowed: Set, Load, and Reset always complete as
// observable operations even when the write fails.
type Manager struct {
	path     string
	settings *Settings
	log      logger.Logger
}

// NewManager creates a settings manager for the given file path.
// A nil logger defaults to the package logger.
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewEnvLogger("[settings]")
	}
	return &Manager{
		path:     path,
		settings: DefaultSettings(),
		log:      log,
	}
}

// Load merges any persisted settings over the defaults. Persisted values win
// on conflicting keys; keys absent from the blob keep their defaults.
// Read failures leave the defaults in place and are never raised.
func (m *Manager) Load() *Settings {
	settings := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(m.path)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("could not read settings from %s: %v", m.path, err)
		}
		m.settings = settings
		return settings
	}

	if err := v.Unmarshal(settings); err != nil {
		m.log.Warn("invalid settings format in %s, using defaults: %v", m.path, err)
		settings = DefaultSettings()
	}

	m.settings = settings
	return settings
}

// Settings returns the current in-memory settings.
func (m *Manager) Settings() *Settings {
	return m.settings
}

// Set updates one setting by key and immediately persists the full settings
// record. Unknown keys and unparseable values are reported to the caller;
// persistence failures are not.
func (m *Manager) Set(key, value string) error {
	switch key {
	case "backend_url":
		m.settings.BackendURL = value
	case "exam_url":
		m.settings.ExamURL = value
	case "update_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid interval", value),
				"Use a duration like 5s, 10s, or 1m")
		}
		m.settings.UpdateInterval = d
	case "animations":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' is not a boolean", value),
				"Use true or false")
		}
		m.settings.Animations = b
	case "audio_alerts":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' is not a boolean", value),
				"Use true or false")
		}
		m.settings.AudioAlerts = b
	case "cache_capacity":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is not a positive integer", value),
				"cache_capacity must be a positive integer")
		}
		m.settings.CacheCapacity = n
	case "perf_window":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is not a positive integer", value),
				"perf_window must be a positive integer")
		}
		m.settings.PerfWindow = n
	case "threat_sensitivity":
		switch value {
		case "low", "medium", "high":
			m.settings.ThreatSensitivity = value
		default:
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("unknown sensitivity '%s'", value),
				"threat_sensitivity must be low, medium, or high")
		}
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("unknown setting '%s'", key),
			"Run 'examdeck settings list' to see available settings")
	}

	m.Save()
	return nil
}

// Get returns the string form of one setting by key.
func (m *Manager) Get(key string) (string, error) {
	switch key {
	case "backend_url":
		return m.settings.BackendURL, nil
	case "exam_url":
		return m.settings.ExamURL, nil
	case "update_interval":
		return m.settings.UpdateInterval.String(), nil
	case "animations":
		return strconv.FormatBool(m.settings.Animations), nil
	case "audio_alerts":
		return strconv.FormatBool(m.settings.AudioAlerts), nil
	case "cache_capacity":
		return strconv.Itoa(m.settings.CacheCapacity), nil
	case "perf_window":
		return strconv.Itoa(m.settings.PerfWindow), nil
	case "threat_sensitivity":
		return m.settings.ThreatSensitivity, nil
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("unknown setting '%s'", key),
			"Run 'examdeck settings list' to see available settings")
	}
}

// Keys returns the settable keys in display order.
func Keys() []string {
	return []string{
		"backend_url", "exam_url", "update_interval", "animations",
		"audio_alerts", "cache_capacity", "perf_window", "threat_sensitivity",
	}
}

// Save writes the full settings record to disk. Failures (missing directory
// that cannot be created, quota, permissions) are logged and swallowed.
// Durations are written in their string form so the file stays hand-editable.
func (m *Manager) Save() {
	record := map[string]interface{}{
		"backend_url":        m.settings.BackendURL,
		"exam_url":           m.settings.ExamURL,
		"update_interval":    m.settings.UpdateInterval.String(),
		"animations":         m.settings.Animations,
		"audio_alerts":       m.settings.AudioAlerts,
		"cache_capacity":     m.settings.CacheCapacity,
		"perf_window":        m.settings.PerfWindow,
		"threat_sensitivity": m.settings.ThreatSensitivity,
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		m.log.Warn("could not encode settings: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		m.log.Warn("could not create settings directory: %v", err)
		return
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		m.log.Warn("could not persist settings to %s: %v", m.path, err)
	}
}

// Reset restores the defaults and persists them.
func (m *Manager) Reset() {
	m.settings = DefaultSettings()
	m.Save()
}
