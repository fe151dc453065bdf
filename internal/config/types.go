// Package config implements examdeck's persisted settings: a flat record
// merged over hard-coded defaults, loaded once at startup and written back in
// full on every change.
package config

import "time"

// Settings is the flat persisted settings record. Keys absent from the
// persisted blob fall back to defaults, so new settings can be added without
// breaking older settings files.
type Settings struct {
	// BackendURL is the proctoring backend base URL (REST and websocket).
	BackendURL string `mapstructure:"backend_url" yaml:"backend_url"`
	// ExamURL is the active exam page; tabs on the same hostname are
	// protected from closure.
	ExamURL string `mapstructure:"exam_url" yaml:"exam_url"`
	// UpdateInterval is the fallback polling interval when the realtime
	// channel is unavailable.
	UpdateInterval time.Duration `mapstructure:"update_interval" yaml:"update_interval"`
	// Animations toggles counter animations.
	Animations bool `mapstructure:"animations" yaml:"animations"`
	// AudioAlerts toggles the terminal bell on alerts.
	AudioAlerts bool `mapstructure:"audio_alerts" yaml:"audio_alerts"`
	// CacheCapacity bounds the derived-result cache.
	CacheCapacity int `mapstructure:"cache_capacity" yaml:"cache_capacity"`
	// PerfWindow bounds the performance sample windows.
	PerfWindow int `mapstructure:"perf_window" yaml:"perf_window"`
	// ThreatSensitivity selects which risk levels get highlighted:
	// "low", "medium", or "high".
	ThreatSensitivity string `mapstructure:"threat_sensitivity" yaml:"threat_sensitivity"`
}

// DefaultSettings returns the hard-coded defaults.
func DefaultSettings() *Settings {
	return &Settings{
		BackendURL:        "http://127.0.0.1:5000",
		ExamURL:           "",
		UpdateInterval:    5 * time.Second,
		Animations:        true,
		AudioAlerts:       false,
		CacheCapacity:     50,
		PerfWindow:        100,
		ThreatSensitivity: "medium",
	}
}
