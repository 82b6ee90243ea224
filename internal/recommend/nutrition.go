package recommend

import (
	"strings"

	"github.com/blogspace/patientzero/internal/models"
)

var nutritionKeywords = []string{
	"nutrition", "nutritious", "food", "diet", "eating", "meal",
	"recipe", "healthy", "vegetable", "fruit", "protein",
}

// Profile keywords are broader than post keywords: they also catch weight and
// supplement goals.
var nutritionInterestKeywords = []string{
	"nutrition", "nutritious", "food", "diet", "eating", "meal",
	"weight", "healthy eating", "balanced diet", "nutrients", "vitamins", "protein",
}

// IsNutritious reports whether any nutrition keyword appears, case-insensitively,
// in the post's tags, category, title or description.
func IsNutritious(p *models.Post) bool {
	for _, tag := range p.Tags {
		if containsAnyFold(tag, nutritionKeywords) {
			return true
		}
	}
	return containsAnyFold(p.Categories, nutritionKeywords) ||
		containsAnyFold(p.Title, nutritionKeywords) ||
		containsAnyFold(p.Description, nutritionKeywords)
}

// HasNutritionInterest reports whether the profile's goals or current status
// signal a dietary focus.
func HasNutritionInterest(p Profile) bool {
	for _, goal := range p.Goals {
		if containsAnyFold(goal, nutritionInterestKeywords) {
			return true
		}
	}
	return containsAnyFold(p.CurrentStatus, nutritionInterestKeywords)
}

func containsAnyFold(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// containsFold is a case-insensitive substring test. An empty needle never
// matches, so blank conditions or goals cannot match every post.
func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
