package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/metrics"
	"github.com/blogspace/patientzero/internal/models"
)

// CandidateLimit is how many of the newest posts are considered per request.
const CandidateLimit = 100

// PostSource supplies candidate posts, newest first.
type PostSource interface {
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
}

// Service builds recommendations for a profile from a classifier and a post source.
type Service struct {
	classifier Classifier
	posts      PostSource
	now        func() time.Time
}

func NewService(classifier Classifier, posts PostSource) *Service {
	return &Service{classifier: classifier, posts: posts, now: time.Now}
}

// Recommend classifies the profile, loads candidates and scores them.
// Classifier and storage errors are returned to the caller unchanged in kind.
func (s *Service) Recommend(ctx context.Context, profile Profile) ([]Recommendation, error) {
	start := s.now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	categories, err := s.classifier.Classify(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("classify profile: %w", err)
	}
	if len(categories) == 0 {
		logging.Ctx(ctx).Info().Msg("No relevant categories for profile")
		metrics.RecommendationsServed.Observe(0)
		return []Recommendation{}, nil
	}

	posts, err := s.posts.RecentPosts(ctx, CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("load candidate posts: %w", err)
	}

	recs := Score(profile, posts, categories, HasNutritionInterest(profile), s.now())

	logging.Ctx(ctx).Info().
		Strs("categories", categories).
		Int("candidates", len(posts)).
		Int("recommendations", len(recs)).
		Msg("Built recommendations")
	metrics.RecommendationsServed.Observe(float64(len(recs)))
	return recs, nil
}
