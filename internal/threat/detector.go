// Package threat scores processes and browser tabs with a fixed-weight rule
// table. It is a plain weighted rule scorer: nothing is learned, and the
// weights are exported constants so tests can pin them.
package threat

import (
	"strings"

	"github.com/examdeck/examdeck/internal/snapshot"
)

// Score weights. A score is the clamped sum of every matching rule, except
// that the name-fragment rule counts its first match only.
const (
	WeightAIFlag       = 5 // backend flagged the process as an AI app
	WeightNameFragment = 3 // process name contains a known AI-tool fragment
	WeightHighMemory   = 2 // memory_percent > 20
	WeightElevatedMem  = 1 // memory_percent > 10
	WeightHighCPU      = 2 // cpu_percent > 50
	WeightElevatedCPU  = 1 // cpu_percent > 25

	WeightSuspiciousDomain = 5 // tab hostname in the suspicious-domain list
	WeightTitleKeyword     = 3 // tab title contains an AI keyword

	MaxScore = 10
)

// Resource thresholds for the memory/cpu rules.
const (
	HighMemoryPercent     = 20.0
	ElevatedMemoryPercent = 10.0
	HighCPUPercent        = 50.0
	ElevatedCPUPercent    = 25.0
)

// Risk labels in descending severity.
const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"
	RiskMinimal  = "minimal"
)

// aiNameFragments are the process-name fragments treated as AI tooling.
var aiNameFragments = []string{
	"chatgpt", "claude", "gemini", "copilot", "openai", "anthropic",
	"bard", "perplexity", "tabnine", "codewhisperer", "codex",
	"cursor", "windsurf", "bolt", "replit", "gpt", "llm",
}

// suspiciousDomains are tab hostnames treated as AI services.
var suspiciousDomains = []string{
	"chat.openai.com", "chatgpt.com", "claude.ai", "gemini.google.com",
	"copilot.microsoft.com", "perplexity.ai", "bard.google.com",
	"poe.com", "you.com",
}

// titleKeywords are tab-title fragments treated as AI usage.
var titleKeywords = []string{
	"chatgpt", "claude", "gemini", "copilot", "ai assistant", "ai chat",
}

// Assessment is the ephemeral result of scoring one process or tab.
// Assessments are computed on demand and never persisted.
type Assessment struct {
	Score   int
	Factors []string
	Risk    string
}

// AnalyzeProcess scores a process against the fixed rule table.
func AnalyzeProcess(p snapshot.ProcessInfo) Assessment {
	score := 0
	var factors []string

	if p.IsAIApp {
		score += WeightAIFlag
		factors = append(factors, "flagged as AI application")
	}

	// First matching fragment only; multiple fragments in one name do not
	// accumulate weight.
	name := strings.ToLower(p.Name)
	for _, fragment := range aiNameFragments {
		if strings.Contains(name, fragment) {
			score += WeightNameFragment
			factors = append(factors, "name matches AI tool pattern: "+fragment)
			break
		}
	}

	switch {
	case p.MemoryPercent > HighMemoryPercent:
		score += WeightHighMemory
		factors = append(factors, "high memory usage")
	case p.MemoryPercent > ElevatedMemoryPercent:
		score += WeightElevatedMem
		factors = append(factors, "elevated memory usage")
	}

	switch {
	case p.CPUPercent > HighCPUPercent:
		score += WeightHighCPU
		factors = append(factors, "high CPU usage")
	case p.CPUPercent > ElevatedCPUPercent:
		score += WeightElevatedCPU
		factors = append(factors, "elevated CPU usage")
	}

	score = clamp(score)
	return Assessment{Score: score, Factors: factors, Risk: ScoreToRisk(score)}
}

// AnalyzeTab scores a browser tab against the fixed rule table.
func AnalyzeTab(tab snapshot.TabInfo) Assessment {
	score := 0
	var factors []string

	host := strings.ToLower(tab.URL)
	for _, domain := range suspiciousDomains {
		if strings.Contains(host, domain) {
			score += WeightSuspiciousDomain
			factors = append(factors, "suspicious domain: "+domain)
			break
		}
	}

	title := strings.ToLower(tab.Title)
	for _, keyword := range titleKeywords {
		if strings.Contains(title, keyword) {
			score += WeightTitleKeyword
			factors = append(factors, "title keyword: "+keyword)
			break
		}
	}

	score = clamp(score)
	return Assessment{Score: score, Factors: factors, Risk: ScoreToRisk(score)}
}

// ScoreToRisk maps a numeric score to an ordinal risk label.
func ScoreToRisk(score int) string {
	switch {
	case score >= 8:
		return RiskCritical
	case score >= 6:
		return RiskHigh
	case score >= 4:
		return RiskMedium
	case score >= 2:
		return RiskLow
	default:
		return RiskMinimal
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
