package usecase

import (
	"context"
	"strconv"
	"strings"

	"productcopy-core/internal/domain/entity"
)

const (
	scoreMarker    = "SCORE:"
	feedbackMarker = "FEEDBACK:"

	neutralScore    = 5
	noFeedback      = "Geen specifieke feedback beschikbaar."
	minQualityScore = 1
	maxQualityScore = 10
)

// QualityEvaluator asks the generation capability to grade a draft.
type QualityEvaluator struct {
	text *TextClient
}

func NewQualityEvaluator(text *TextClient) *QualityEvaluator {
	return &QualityEvaluator{text: text}
}

// Evaluate fails only when the generation call itself fails. A malformed
// answer degrades to the neutral assessment.
func (e *QualityEvaluator) Evaluate(ctx context.Context, req entity.GenerationRequest, draft entity.Draft) (entity.QualityAssessment, error) {
	resp, err := e.text.GenerateText(ctx, buildQualityPrompt(req, draft))
	if err != nil {
		return entity.QualityAssessment{}, err
	}
	return ParseAssessment(resp), nil
}

// ParseAssessment reads SCORE and FEEDBACK lines in any order. Unknown lines are
// ignored, the last marker wins, and the score is clamped to [1,10].
func ParseAssessment(resp string) entity.QualityAssessment {
	a := entity.QualityAssessment{Score: neutralScore, Feedback: noFeedback}
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, scoreMarker):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, scoreMarker)))
			if err != nil {
				a.Score = neutralScore
				continue
			}
			a.Score = clampScore(n)
		case strings.HasPrefix(line, feedbackMarker):
			a.Feedback = strings.TrimSpace(strings.TrimPrefix(line, feedbackMarker))
		}
	}
	return a
}

func clampScore(n int) int {
	return max(minQualityScore, min(maxQualityScore, n))
}
