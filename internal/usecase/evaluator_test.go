package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"productcopy-core/internal/domain/entity"
)

func TestParseAssessment(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantScore int
		wantFb    string
	}{
		{"well formed", "SCORE: 8\nFEEDBACK: Sterke opening.", 8, "Sterke opening."},
		{"order independent", "FEEDBACK: Korter graag.\nSCORE: 6", 6, "Korter graag."},
		{"surrounding noise", "Hier is mijn oordeel:\n  SCORE: 7  \nextra regel\nFEEDBACK: Prima.", 7, "Prima."},
		{"missing score", "FEEDBACK: Geen cijfer.", 5, "Geen cijfer."},
		{"missing feedback", "SCORE: 9", 9, noFeedback},
		{"empty", "", 5, noFeedback},
		{"unparseable score", "SCORE: acht\nFEEDBACK: x", 5, "x"},
		{"fraction is unparseable", "SCORE: 8/10", 5, noFeedback},
		{"clamp high", "SCORE: 15", 10, noFeedback},
		{"clamp low", "SCORE: 0", 1, noFeedback},
		{"clamp negative", "SCORE: -3", 1, noFeedback},
		{"last marker wins", "SCORE: 3\nSCORE: 9", 9, noFeedback},
		{"bad later marker resets", "SCORE: 9\nSCORE: ?", 5, noFeedback},
		{"lowercase marker ignored", "score: 9", 5, noFeedback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAssessment(tt.in)
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Feedback != tt.wantFb {
				t.Errorf("feedback = %q, want %q", got.Feedback, tt.wantFb)
			}
		})
	}
}

func TestParseAssessmentScoreAlwaysInRange(t *testing.T) {
	for n := -20; n <= 30; n++ {
		got := ParseAssessment("SCORE: " + strconv.Itoa(n)).Score
		if got < 1 || got > 10 {
			t.Fatalf("score %d parsed to %d, outside [1,10]", n, got)
		}
	}
}

func TestEvaluateStripsMarkdownBeforeParsing(t *testing.T) {
	gen := &fakeGenerator{assessments: []string{"**SCORE:** 9\n**FEEDBACK:** Top."}}
	e := NewQualityEvaluator(NewTextClient(gen, "test-model"))

	a, err := e.Evaluate(context.Background(), sampleRequest(), "Een concept")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Score != 9 || a.Feedback != "Top." {
		t.Errorf("got %+v", a)
	}
}

func TestEvaluatePropagatesGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{failOn: "kwaliteitsbeoordelaar"}
	e := NewQualityEvaluator(NewTextClient(gen, "test-model"))

	_, err := e.Evaluate(context.Background(), sampleRequest(), "Een concept")
	if !errors.Is(err, entity.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}
