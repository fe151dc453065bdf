package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Snapshot {
	return &Snapshot{
		Processes: Processes{
			All: []ProcessInfo{
				{PID: 1, Name: "chatgpt", MemoryPercent: 25, CPUPercent: 5, Status: "running", IsAIApp: true},
				{PID: 2, Name: "code", MemoryPercent: 8, CPUPercent: 12, Status: "running"},
				{PID: 3, Name: "slackd", MemoryPercent: 3, CPUPercent: 1, Status: "sleeping"},
			},
			AI:    []ProcessInfo{{PID: 1, Name: "chatgpt", MemoryPercent: 25, CPUPercent: 5, Status: "running", IsAIApp: true}},
			Count: 3,
		},
		BrowserTabs: BrowserTabs{
			Tabs: map[string][]TabInfo{
				"chrome": {
					{Title: "Exam Portal", URL: "https://exam.example.edu/session/42"},
					{Title: "ChatGPT", URL: "https://chat.openai.com"},
				},
			},
		},
		SystemStats: SystemStats{MemoryPercent: 61.2, CPUPercent: 14.0},
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	s := &Snapshot{}
	s.Normalize()

	assert.NotNil(t, s.Processes.All)
	assert.NotNil(t, s.Processes.AI)
	assert.NotNil(t, s.BrowserTabs.Tabs)
	assert.NotNil(t, s.BrowserTabs.Summary.Browsers)
	assert.Zero(t, s.Processes.Count)
	assert.Zero(t, s.TotalTabCount())
}

func TestNormalizeDerivesCounts(t *testing.T) {
	s := sample()
	s.Processes.Count = 0
	s.Normalize()

	assert.Equal(t, 3, s.Processes.Count)
	assert.Equal(t, 2, s.TotalTabCount())
	assert.Equal(t, 2, s.BrowserTabs.Summary.Browsers["chrome"])
}

func TestDecodePartialSnapshot(t *testing.T) {
	// Missing optional fields are tolerated via defaulting.
	var s Snapshot
	err := json.Unmarshal([]byte(`{"processes":{"count":5}}`), &s)
	require.NoError(t, err)
	s.Normalize()

	assert.Equal(t, 5, s.Processes.Count)
	assert.Empty(t, s.Processes.All)
	assert.Zero(t, s.TotalTabCount())
}

func TestSignatureStableAndSensitive(t *testing.T) {
	a := sample()
	b := sample()
	assert.Equal(t, a.Signature(), b.Signature())

	b.Processes.All[0].PID = 99
	assert.NotEqual(t, a.Signature(), b.Signature(), "process churn changes the signature")

	c := sample()
	c.SystemStats.MemoryPercent = 80.0
	assert.NotEqual(t, a.Signature(), c.Signature())
}

func TestIsProtected(t *testing.T) {
	tests := []struct {
		name    string
		tab     TabInfo
		examURL string
		want    bool
	}{
		{"same hostname", TabInfo{URL: "https://exam.example.edu/q/1"}, "https://exam.example.edu/start", true},
		{"different hostname", TabInfo{URL: "https://chat.openai.com"}, "https://exam.example.edu", false},
		{"no exam url", TabInfo{URL: "https://exam.example.edu"}, "", false},
		{"empty tab url", TabInfo{}, "https://exam.example.edu", false},
		{"case-insensitive host", TabInfo{URL: "https://Exam.Example.EDU/x"}, "https://exam.example.edu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tab.IsProtected(tt.examURL))
		})
	}
}

func TestFilterProcesses(t *testing.T) {
	s := sample()

	ai := FilterProcesses(s.Processes.All, FilterAI)
	require.Len(t, ai, 1)
	assert.Equal(t, "chatgpt", ai[0].Name)

	all := FilterProcesses(s.Processes.All, FilterAll)
	assert.Len(t, all, 3)

	unknown := FilterProcesses(s.Processes.All, "bogus")
	assert.Len(t, unknown, 3)
}

func TestSortProcesses(t *testing.T) {
	s := sample()

	byMem := SortProcesses(s.Processes.All, SortByMemory)
	assert.Equal(t, "chatgpt", byMem[0].Name)

	byCPU := SortProcesses(s.Processes.All, SortByCPU)
	assert.Equal(t, "code", byCPU[0].Name)

	byName := SortProcesses(s.Processes.All, SortByName)
	assert.Equal(t, "chatgpt", byName[0].Name)
	assert.Equal(t, "slackd", byName[2].Name)

	// Input order untouched
	assert.Equal(t, 1, s.Processes.All[0].PID)
}

func TestTopN(t *testing.T) {
	s := sample()

	assert.Len(t, TopN(s.Processes.All, 2), 2)
	assert.Len(t, TopN(s.Processes.All, 10), 3)
	assert.Len(t, TopN(s.Processes.All, 0), 3)
}

func TestGroupByStatus(t *testing.T) {
	s := sample()
	nodes := GroupByStatus(s.Processes.All)

	require.Len(t, nodes, 2)
	assert.Equal(t, "running", nodes[0].Status, "largest group first")
	assert.Len(t, nodes[0].Processes, 2)
	assert.Equal(t, 1, nodes[0].AICount)
	assert.InDelta(t, 33.0, nodes[0].TotalMem, 0.001)

	empty := GroupByStatus([]ProcessInfo{{PID: 1, Name: "x"}})
	require.Len(t, empty, 1)
	assert.Equal(t, "unknown", empty[0].Status)
}

func TestClassifyTabs(t *testing.T) {
	s := sample()
	protected, willClose := ClassifyTabs(s.BrowserTabs.Tabs["chrome"], "https://exam.example.edu")

	require.Len(t, protected, 1)
	assert.Equal(t, "Exam Portal", protected[0].Title)
	require.Len(t, willClose, 1)
	assert.Equal(t, "ChatGPT", willClose[0].Title)
}

func TestSortedBrowsers(t *testing.T) {
	b := BrowserTabs{Tabs: map[string][]TabInfo{
		"firefox": nil, "chrome": nil, "edge": nil,
	}}
	assert.Equal(t, []string{"chrome", "edge", "firefox"}, b.SortedBrowsers())
}
