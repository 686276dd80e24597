package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"productcopy-core/internal/domain/entity"
)

const (
	DefaultMaxRounds       = 3
	DefaultAcceptThreshold = 7
)

// RefineState is a step of the generate-evaluate-improve loop.
type RefineState int

const (
	StateDrafting RefineState = iota
	StateEvaluating
	StateAccepted
	StateExhausted
)

func (s RefineState) String() string {
	switch s {
	case StateDrafting:
		return "drafting"
	case StateEvaluating:
		return "evaluating"
	case StateAccepted:
		return "accepted"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("RefineState(%d)", int(s))
}

func (s RefineState) Terminal() bool { return s == StateAccepted || s == StateExhausted }

type RefinePolicy struct {
	MaxRounds       int
	AcceptThreshold int
}

func DefaultRefinePolicy() RefinePolicy {
	return RefinePolicy{MaxRounds: DefaultMaxRounds, AcceptThreshold: DefaultAcceptThreshold}
}

// Next is the transition function. round is the round that just produced the
// draft (1-based); score only matters when leaving StateEvaluating.
// Acceptance is checked before exhaustion, so a passing last round is Accepted.
func (p RefinePolicy) Next(s RefineState, round, score int) RefineState {
	switch s {
	case StateDrafting:
		return StateEvaluating
	case StateEvaluating:
		if score >= p.AcceptThreshold {
			return StateAccepted
		}
		if round >= p.MaxRounds {
			return StateExhausted
		}
		return StateDrafting
	}
	return s
}

// Refiner runs the bounded self-correction loop. Exactly one draft is live at a
// time and every call is sequential.
type Refiner struct {
	text      *TextClient
	evaluator *QualityEvaluator
	policy    RefinePolicy
	logger    *zap.Logger
}

func NewRefiner(text *TextClient, evaluator *QualityEvaluator, policy RefinePolicy, logger *zap.Logger) *Refiner {
	if policy.MaxRounds < 1 {
		policy.MaxRounds = 1
	}
	return &Refiner{text: text, evaluator: evaluator, policy: policy, logger: logger}
}

// Refine returns the last draft with its assessment. Any generation failure
// aborts the whole run; no partial result is returned.
func (r *Refiner) Refine(ctx context.Context, req entity.GenerationRequest) (*entity.RefinementOutcome, error) {
	var (
		state      = StateDrafting
		round      = 1
		draft      entity.Draft
		assessment entity.QualityAssessment
	)

	for !state.Terminal() {
		switch state {
		case StateDrafting:
			prompt := buildDescriptionPrompt(req)
			if round > 1 {
				prompt = buildImprovePrompt(req, draft, assessment.Feedback)
			}
			text, err := r.text.GenerateText(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("round %d draft: %w", round, err)
			}
			draft = entity.Draft(text)

		case StateEvaluating:
			a, err := r.evaluator.Evaluate(ctx, req, draft)
			if err != nil {
				return nil, fmt.Errorf("round %d evaluation: %w", round, err)
			}
			assessment = a
			r.logger.Info("refinement round scored",
				zap.Int("round", round),
				zap.Int("score", a.Score),
			)
		}

		next := r.policy.Next(state, round, assessment.Score)
		if state == StateEvaluating && next == StateDrafting {
			round++
		}
		state = next
	}

	return &entity.RefinementOutcome{Draft: draft, Assessment: assessment, Rounds: round}, nil
}
