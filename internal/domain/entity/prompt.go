package entity

import (
	"fmt"
	"strings"
	"time"
)

// GenerationRequest is the immutable input of one generation run.
type GenerationRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProductName     string `json:"product_name"`
	ProductFeatures string `json:"product_features"`
	TargetAudience  string `json:"target_audience"`
	Tone            string `json:"tone"`
}

// Validate reports the first missing required field.
func (r GenerationRequest) Validate() error {
	fields := []struct{ name, value string }{
		{"email", r.Email},
		{"product_name", r.ProductName},
		{"product_features", r.ProductFeatures},
		{"target_audience", r.TargetAudience},
		{"tone", r.Tone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, f.name)
		}
	}
	return nil
}

// InputSummary is the compact form of the request stored alongside each generation.
func (r GenerationRequest) InputSummary() string {
	return r.ProductName + " - " + r.ProductFeatures
}

// Draft is the current plain-text candidate description. Rounds replace it, never edit it.
type Draft string

type QualityAssessment struct {
	Score    int    `json:"score"`    // 1..10
	Feedback string `json:"feedback"` // single sentence
}

// RefinementOutcome is the terminal result of the refinement loop.
type RefinementOutcome struct {
	Draft      Draft
	Assessment QualityAssessment
	Rounds     int
}

type DerivedContent struct {
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
}

// GenerationResult is what a successful run returns to the caller.
type GenerationResult struct {
	Description    string        `json:"description"`
	SEOTitle       string        `json:"seo_title"`
	SEODescription string        `json:"seo_description"`
	Score          int           `json:"score"`
	Rounds         int           `json:"rounds"`
	Name           string        `json:"name"`
	Duration       time.Duration `json:"-"`
}

// GenerationRecord is the durable row written to the ledger after success.
type GenerationRecord struct {
	ID         string
	Service    string
	Email      string
	Name       string
	Input      string
	Result     string // JSON {description, seo_title, seo_description}
	Score      int
	Rounds     int
	DurationMs int64
}
