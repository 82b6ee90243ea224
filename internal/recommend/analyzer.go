package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Analysis is the result of reading a status update.
type Analysis struct {
	// Condition is the condition mentioned or implied, empty when none.
	Condition      string `json:"condition"`
	IsNew          bool   `json:"is_new"`
	NeedsNutrition bool   `json:"needs_nutrition"`
	Analysis       string `json:"analysis"`
}

// Analyzer reads a status update in the context of the user's profile.
type Analyzer interface {
	Analyze(ctx context.Context, previous, current string, profile Profile) (Analysis, error)
}

// StaticAnalyzer flags dietary needs from keywords and detects no conditions.
type StaticAnalyzer struct{}

func (StaticAnalyzer) Analyze(_ context.Context, _, current string, _ Profile) (Analysis, error) {
	needs := containsAnyFold(current, []string{"nutrition", "food", "diet"})
	summary := "Status recorded."
	if needs {
		summary = "Status mentions diet or food; nutrition content will be prioritised."
	}
	return Analysis{NeedsNutrition: needs, Analysis: summary}, nil
}

const analyzerSystemPrompt = "You are a health analysis system that identifies health conditions and provides insights from user status updates."

// LLMAnalyzer asks a chat model to analyse the status update.
type LLMAnalyzer struct {
	llm Completer
}

func NewLLMAnalyzer(llm Completer) *LLMAnalyzer {
	return &LLMAnalyzer{llm: llm}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, previous, current string, profile Profile) (Analysis, error) {
	content, err := a.llm.Complete(ctx, CompletionRequest{
		System:      analyzerSystemPrompt,
		User:        analyzerPrompt(previous, current, profile),
		Temperature: 0.3,
		MaxTokens:   512,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze status: %w", err)
	}

	var raw struct {
		Condition      *string `json:"condition"`
		IsNew          bool    `json:"isNew"`
		NeedsNutrition bool    `json:"needsNutrition"`
		Analysis       string  `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return Analysis{}, fmt.Errorf("parse analysis response: %w", err)
	}

	out := Analysis{IsNew: raw.IsNew, NeedsNutrition: raw.NeedsNutrition, Analysis: raw.Analysis}
	if raw.Condition != nil && !strings.EqualFold(strings.TrimSpace(*raw.Condition), "null") {
		out.Condition = strings.TrimSpace(*raw.Condition)
	}
	return out, nil
}

func analyzerPrompt(previous, current string, p Profile) string {
	var b strings.Builder
	b.WriteString("Analyze the user's health status update and identify any health conditions or changes mentioned.\n\n")
	fmt.Fprintf(&b, "Previous status: %s\n", orNone(previous))
	fmt.Fprintf(&b, "Current status: %s\n\n", current)
	fmt.Fprintf(&b, "User's existing health conditions: %s\n", orNone(strings.Join(p.Conditions, ", ")))
	fmt.Fprintf(&b, "User's health goals: %s\n\n", orNone(strings.Join(p.Goals, ", ")))

	if containsAnyFold(current, nutritionKeywords) {
		b.WriteString("The user has mentioned nutrition or food in their status update. Please pay special attention to any dietary needs, preferences, or nutrition-related health concerns.\n\n")
	}

	b.WriteString(`Please analyze the status update and provide:
1. Any specific health condition mentioned or implied
2. Whether this is a new condition or an update to an existing one
3. Whether the user needs dietary or nutrition advice based on their status

Format your response as a JSON object with the following structure:
{
  "condition": "identified health condition or null if none detected",
  "isNew": true/false,
  "needsNutrition": true/false,
  "analysis": "brief analysis of the status update"
}

Only include the JSON object in your response, with no additional text.`)
	return b.String()
}
