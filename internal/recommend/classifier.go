package recommend

import (
	"context"
	"strings"

	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/metrics"
)

// Classifier maps a health profile to the subset of Categories relevant to it.
type Classifier interface {
	Classify(ctx context.Context, profile Profile) ([]string, error)
}

// categoryKeywords drives StaticClassifier. Keys are members of Categories.
var categoryKeywords = map[string][]string{
	"Nutrition": {
		"nutrition", "nutritious", "food", "diet", "eating", "meal",
		"weight", "vitamin", "protein", "nutrient", "recipe",
	},
	"Mental Health": {
		"mental", "stress", "anxiety", "anxious", "depress", "mood",
		"sleep", "insomnia", "burnout", "mindful", "therapy", "lonely",
	},
	"Exercise": {
		"exercise", "workout", "fitness", "running", "gym", "strength",
		"yoga", "walking", "cardio", "training", "marathon", "stretch",
	},
	"Chronic Diseases": {
		"chronic", "diabetes", "hypertension", "blood pressure", "asthma",
		"arthritis", "cancer", "heart", "cholesterol", "copd", "kidney",
	},
	"Healthy Living": {
		"healthy", "lifestyle", "wellness", "habit", "hydrat",
		"well-being", "wellbeing", "energy", "balance",
	},
}

// StaticClassifier matches category keywords against the profile's status,
// conditions and goals. It never fails and needs no network.
type StaticClassifier struct{}

func (StaticClassifier) Classify(_ context.Context, profile Profile) ([]string, error) {
	text := strings.ToLower(strings.Join(append(append(
		[]string{profile.CurrentStatus}, profile.Conditions...), profile.Goals...), " "))

	matched := make([]string, 0, len(Categories))
	for _, category := range Categories {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(text, kw) {
				matched = append(matched, category)
				break
			}
		}
	}
	metrics.ClassifierRequests.WithLabelValues("static", "ok").Inc()
	return matched, nil
}

// FallbackClassifier asks Primary first and Secondary when Primary fails.
type FallbackClassifier struct {
	Primary   Classifier
	Secondary Classifier
}

func (f FallbackClassifier) Classify(ctx context.Context, profile Profile) ([]string, error) {
	categories, err := f.Primary.Classify(ctx, profile)
	if err == nil {
		return categories, nil
	}

	logging.Ctx(ctx).Warn().Err(err).Msg("Primary classifier failed, using fallback")
	metrics.ClassifierRequests.WithLabelValues("primary", "fallback").Inc()
	return f.Secondary.Classify(ctx, profile)
}

// FallbackAnalyzer asks Primary first and Secondary when Primary fails.
type FallbackAnalyzer struct {
	Primary   Analyzer
	Secondary Analyzer
}

func (f FallbackAnalyzer) Analyze(ctx context.Context, previous, current string, profile Profile) (Analysis, error) {
	analysis, err := f.Primary.Analyze(ctx, previous, current, profile)
	if err == nil {
		return analysis, nil
	}

	logging.Ctx(ctx).Warn().Err(err).Msg("Primary analyzer failed, using fallback")
	metrics.ClassifierRequests.WithLabelValues("analyzer", "fallback").Inc()
	return f.Secondary.Analyze(ctx, previous, current, profile)
}

// knownCategories keeps only members of Categories, in Categories order and
// without duplicates.
func knownCategories(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		seen[strings.TrimSpace(l)] = true
	}

	out := make([]string, 0, len(labels))
	for _, c := range Categories {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}
