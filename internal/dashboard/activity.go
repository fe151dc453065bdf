package dashboard

import "time"

// maxActivityEntries bounds the activity log; oldest entries are dropped.
const maxActivityEntries = 50

// ActivityLevel classifies an activity log entry.
type ActivityLevel int

const (
	ActivityInfo ActivityLevel = iota
	ActivitySuccess
	ActivityWarning
	ActivityError
)

// ActivityEntry is one line in the dashboard's activity log.
type ActivityEntry struct {
	Time    time.Time
	Level   ActivityLevel
	Message string
}

// activityLog is a bounded, append-only event log.
type activityLog struct {
	entries []ActivityEntry
	now     func() time.Time
}

func newActivityLog() *activityLog {
	return &activityLog{now: time.Now}
}

func (l *activityLog) add(level ActivityLevel, message string) {
	l.entries = append(l.entries, ActivityEntry{
		Time:    l.now(),
		Level:   level,
		Message: message,
	})
	if len(l.entries) > maxActivityEntries {
		l.entries = l.entries[len(l.entries)-maxActivityEntries:]
	}
}

// last returns up to count of the most recent entries, newest first.
func (l *activityLog) last(count int) []ActivityEntry {
	if count <= 0 || len(l.entries) == 0 {
		return nil
	}
	if count > len(l.entries) {
		count = len(l.entries)
	}
	out := make([]ActivityEntry, count)
	for i := 0; i < count; i++ {
		out[i] = l.entries[len(l.entries)-1-i]
	}
	return out
}
