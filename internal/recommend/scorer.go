package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/metrics"
	"github.com/blogspace/patientzero/internal/models"
)

// MaxRecommendations caps the number of results Score returns.
const MaxRecommendations = 5

// recentWindow is the age below which a post earns the recency bonus.
const recentWindow = 7 * 24 * time.Hour

const (
	pointsCategory          = 40
	pointsTag               = 20
	pointsTitleCategory     = 15
	pointsContentCategory   = 10
	pointsTitleCondition    = 30
	pointsContentCondition  = 20
	pointsTitleGoal         = 25
	pointsContentGoal       = 15
	pointsNutritionInterest = 35
	pointsRecent            = 10
	pointsNutritious        = 15
	pointsStatusNutrition   = 25
)

// Score ranks posts for the profile. Every matching rule adds its points and
// a reason; posts scoring zero are dropped, the rest are sorted by score
// (ties keep their input order) and capped at MaxRecommendations.
//
// A post whose scoring fails is logged and skipped; it does not fail the batch.
func Score(profile Profile, posts []models.Post, relevantCategories []string, hasNutritionInterest bool, now time.Time) []Recommendation {
	return scoreAll(scorePost, profile, posts, relevantCategories, hasNutritionInterest, now)
}

type postScorer func(profile Profile, post *models.Post, categories []string, nutritionInterest bool, now time.Time) Recommendation

func scoreAll(score postScorer, profile Profile, posts []models.Post, relevantCategories []string, hasNutritionInterest bool, now time.Time) []Recommendation {
	out := make([]Recommendation, 0, MaxRecommendations)
	if len(posts) == 0 || len(relevantCategories) == 0 {
		return out
	}

	for i := range posts {
		rec, err := scoreIsolated(score, profile, &posts[i], relevantCategories, hasNutritionInterest, now)
		if err != nil {
			metrics.ScoringFailures.Inc()
			logging.Warn().Err(err).Uint("post_id", posts[i].ID).Msg("Skipping post that failed scoring")
			continue
		}
		if rec.RelevanceScore > 0 {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].RelevanceScore > out[b].RelevanceScore
	})

	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

func scoreIsolated(score postScorer, profile Profile, post *models.Post, categories []string, nutritionInterest bool, now time.Time) (rec Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("score post %d: %v", post.ID, r)
		}
	}()
	return score(profile, post, categories, nutritionInterest, now), nil
}

func scorePost(profile Profile, post *models.Post, categories []string, nutritionInterest bool, now time.Time) Recommendation {
	var (
		score   int
		reasons []string
	)

	for _, category := range categories {
		if containsFold(post.Categories, category) {
			score += pointsCategory
			reasons = append(reasons, "Matches category: "+category)
		}
	}

	var matchingTags []string
	for _, tag := range post.Tags {
		for _, category := range categories {
			if containsFold(tag, category) {
				matchingTags = append(matchingTags, tag)
				break
			}
		}
	}
	if len(matchingTags) > 0 {
		score += pointsTag * len(matchingTags)
		reasons = append(reasons, "Relevant tags: "+strings.Join(matchingTags, ", "))
	}

	for _, category := range categories {
		if containsFold(post.Title, category) {
			score += pointsTitleCategory
			reasons = append(reasons, "Title matches "+category)
		}
		if containsFold(post.Description, category) {
			score += pointsContentCategory
			reasons = append(reasons, "Content related to "+category)
		}
	}

	for _, condition := range profile.Conditions {
		if containsFold(post.Title, condition) {
			score += pointsTitleCondition
			reasons = append(reasons, "Matches health condition: "+condition)
		}
		if containsFold(post.Description, condition) {
			score += pointsContentCondition
			reasons = append(reasons, "Content related to condition: "+condition)
		}
	}

	for _, goal := range profile.Goals {
		if containsFold(post.Title, goal) {
			score += pointsTitleGoal
			reasons = append(reasons, "Matches health goal: "+goal)
		}
		if containsFold(post.Description, goal) {
			score += pointsContentGoal
			reasons = append(reasons, "Content related to goal: "+goal)
		}
	}

	nutritious := IsNutritious(post)

	if nutritionInterest && nutritious {
		score += pointsNutritionInterest
		reasons = append(reasons, "Matches nutrition interest")
	}

	if !post.CreatedDate.IsZero() && now.Sub(post.CreatedDate) < recentWindow {
		score += pointsRecent
		reasons = append(reasons, "Recent post")
	}

	if nutritious {
		score += pointsNutritious
		reasons = append(reasons, "Nutrition-related content")
	}

	if nutritious && containsFold(profile.CurrentStatus, "nutritious") {
		score += pointsStatusNutrition
		reasons = append(reasons, "Matches current nutrition interest")
	}

	return Recommendation{
		Post:              *post,
		RelevanceScore:    score,
		Reasoning:         strings.Join(reasons, ". "),
		MatchedCategories: categories,
		IsNutritious:      nutritious,
	}
}
