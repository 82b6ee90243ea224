package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/metrics"
)

const classifierSystemPrompt = "You are a health category classifier that matches user health profiles to relevant health categories."

// LLMClassifier asks a chat model which Categories fit the profile.
type LLMClassifier struct {
	llm Completer
}

func NewLLMClassifier(llm Completer) *LLMClassifier {
	return &LLMClassifier{llm: llm}
}

func (c *LLMClassifier) Classify(ctx context.Context, profile Profile) ([]string, error) {
	content, err := c.llm.Complete(ctx, CompletionRequest{
		System:      classifierSystemPrompt,
		User:        classifierPrompt(profile),
		Temperature: 0.2,
		MaxTokens:   100,
	})
	if err != nil {
		metrics.ClassifierRequests.WithLabelValues("llm", "error").Inc()
		return nil, fmt.Errorf("classify profile: %w", err)
	}

	categories, err := parseCategories(content)
	if err != nil {
		metrics.ClassifierRequests.WithLabelValues("llm", "error").Inc()
		return nil, err
	}

	metrics.ClassifierRequests.WithLabelValues("llm", "ok").Inc()
	logging.Ctx(ctx).Debug().Strs("categories", categories).Msg("Classified health profile")
	return categories, nil
}

func classifierPrompt(p Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a health category classifier. Based on the user's health profile, determine which of these categories are most relevant: %s\n\n",
		strings.Join(Categories, ", "))
	b.WriteString("User's Health Profile:\n")
	fmt.Fprintf(&b, "- Current Status: %s\n", orNone(p.CurrentStatus))
	fmt.Fprintf(&b, "- Health Conditions: %s\n", orNone(strings.Join(p.Conditions, ", ")))
	fmt.Fprintf(&b, "- Health Goals: %s\n\n", orNone(strings.Join(p.Goals, ", ")))
	b.WriteString(`Return your response as a JSON object of the form {"categories": ["Nutrition", "Exercise"]} containing ONLY category names from the list provided.

Consider:
1. Direct mentions of categories
2. Synonyms or related terms
3. Implied health needs
4. Current status context

Return only categories from the provided list that are clearly relevant to the user's health profile.`)
	return b.String()
}

// parseCategories accepts either a bare JSON array or an object with a
// "categories" array, and drops labels outside Categories.
func parseCategories(content string) ([]string, error) {
	content = strings.TrimSpace(content)

	var labels []string
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &labels); err != nil {
			return nil, fmt.Errorf("parse classifier response: %w", err)
		}
		return knownCategories(labels), nil
	}

	var wrapped struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("parse classifier response: %w", err)
	}
	return knownCategories(wrapped.Categories), nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
