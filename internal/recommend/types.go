// Package recommend ranks posts for a user's health profile.
//
// Score is a pure function over the profile, the candidate posts and the
// categories a Classifier found relevant to the profile. Service wires a
// Classifier and a post source around it for request handling.
package recommend

import (
	"github.com/blogspace/patientzero/internal/models"
)

// Categories is the closed set of labels a Classifier may return.
var Categories = []string{
	"Nutrition",
	"Mental Health",
	"Exercise",
	"Chronic Diseases",
	"Healthy Living",
}

// Profile is the part of a health profile the scorer and classifiers read.
type Profile struct {
	Conditions    []string
	Goals         []string
	CurrentStatus string
}

// ProfileFrom converts a stored profile. A nil profile yields an empty one.
func ProfileFrom(p *models.HealthProfile) Profile {
	if p == nil {
		return Profile{}
	}
	return Profile{
		Conditions:    []string(p.Conditions),
		Goals:         []string(p.Goals),
		CurrentStatus: p.CurrentStatus,
	}
}

// Recommendation is a post augmented with its relevance to a profile. It is
// built per request and never stored.
type Recommendation struct {
	models.Post
	RelevanceScore    int      `json:"relevance_score"`
	Reasoning         string   `json:"reasoning"`
	MatchedCategories []string `json:"matched_categories"`
	IsNutritious      bool     `json:"is_nutritious"`
}
