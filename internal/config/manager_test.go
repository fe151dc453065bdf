package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examdeck/examdeck/internal/errors"
	"github.com/examdeck/examdeck/internal/logger"
)

func tempManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	return NewManager(path, logger.Noop())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "http://127.0.0.1:5000", s.BackendURL)
	assert.Empty(t, s.ExamURL)
	assert.Equal(t, 5*time.Second, s.UpdateInterval)
	assert.True(t, s.Animations)
	assert.False(t, s.AudioAlerts)
	assert.Equal(t, 50, s.CacheCapacity)
	assert.Equal(t, 100, s.PerfWindow)
	assert.Equal(t, "medium", s.ThreatSensitivity)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := tempManager(t)
	s := m.Load()

	assert.Equal(t, DefaultSettings(), s)
}

func TestSetThenReloadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	m := NewManager(path, logger.Noop())
	m.Load()
	require.NoError(t, m.Set("exam_url", "https://exam.example.edu"))
	require.NoError(t, m.Set("update_interval", "10s"))
	require.NoError(t, m.Set("audio_alerts", "true"))

	// Simulated reload: a fresh manager over the same persisted blob.
	fresh := NewManager(path, logger.Noop())
	s := fresh.Load()

	assert.Equal(t, "https://exam.example.edu", s.ExamURL)
	assert.Equal(t, 10*time.Second, s.UpdateInterval)
	assert.True(t, s.AudioAlerts)
	// Untouched keys keep their defaults.
	assert.Equal(t, 50, s.CacheCapacity)
}

func TestLoadMergesDefaultsForAbsentKeys(t *testing.T) {
	// A blob written by an older version that knows fewer keys.
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exam_url: https://exam.example.edu\n"), 0o644))

	m := NewManager(path, logger.Noop())
	s := m.Load()

	assert.Equal(t, "https://exam.example.edu", s.ExamURL)
	assert.Equal(t, 5*time.Second, s.UpdateInterval, "absent keys fall back to defaults")
	assert.Equal(t, "medium", s.ThreatSensitivity)
}

func TestResetRestoresDefaults(t *testing.T) {
	m := tempManager(t)
	m.Load()
	require.NoError(t, m.Set("threat_sensitivity", "high"))

	m.Reset()

	for _, key := range Keys() {
		got, err := m.Get(key)
		require.NoError(t, err)

		fresh := NewManager("", logger.Noop())
		want, err := fresh.Get(key)
		require.NoError(t, err)
		assert.Equal(t, want, got, "key %s should be back to default", key)
	}
}

func TestSetValidation(t *testing.T) {
	m := tempManager(t)
	m.Load()

	tests := []struct {
		key   string
		value string
	}{
		{"update_interval", "not-a-duration"},
		{"animations", "maybe"},
		{"cache_capacity", "-3"},
		{"perf_window", "zero"},
		{"threat_sensitivity", "extreme"},
		{"no_such_key", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := m.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestGetUnknownKey(t *testing.T) {
	m := tempManager(t)
	_, err := m.Get("bogus")
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	// Point the manager at an unwritable path; Set must still complete and
	// mutate the in-memory state.
	log := logger.NewBufferLogger()
	m := NewManager(filepath.Join(string([]byte{0}), "nope", "settings.yaml"), log)
	m.Load()

	err := m.Set("exam_url", "https://exam.example.edu")
	require.NoError(t, err)

	got, err := m.Get("exam_url")
	require.NoError(t, err)
	assert.Equal(t, "https://exam.example.edu", got)
	assert.True(t, log.HasLevel("warn"))
}

func TestCorruptBlobFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("update_interval: [not, a, duration]\n"), 0o644))

	m := NewManager(path, logger.Noop())
	s := m.Load()

	assert.Equal(t, DefaultSettings(), s)
}
