package services

import (
	"quizgen/internal/llm"
)

// GenerationState is where the bounded generation loop stands
type GenerationState int

// Generation states
const (
	StateAttempting GenerationState = iota
	StateSucceeded
	StateCreditsExhausted
	StateFailed
)

func (s GenerationState) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateCreditsExhausted:
		return "credits_exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// GenerationStep is one state of the loop. Attempt is the 1-based attempt about to
// run (Attempting) or the one that ended the loop.
type GenerationStep struct {
	State   GenerationState
	Attempt int
	LastErr error
}

// StartGeneration is the initial step
func StartGeneration() GenerationStep {
	return GenerationStep{State: StateAttempting, Attempt: 1}
}

// Terminal reports whether the loop is over
func (s GenerationStep) Terminal() bool {
	return s.State != StateAttempting
}

// NextGenerationStep is the transition function of the loop: success ends it,
// exhausted credits abort it, and any other failure retries until maxAttempts.
func NextGenerationStep(cur GenerationStep, outcome error, maxAttempts int) GenerationStep {
	if cur.Terminal() {
		return cur
	}
	switch {
	case outcome == nil:
		return GenerationStep{State: StateSucceeded, Attempt: cur.Attempt}
	case llm.IsInsufficientCredits(outcome):
		return GenerationStep{State: StateCreditsExhausted, Attempt: cur.Attempt, LastErr: outcome}
	case cur.Attempt >= maxAttempts:
		return GenerationStep{State: StateFailed, Attempt: cur.Attempt, LastErr: outcome}
	default:
		return GenerationStep{State: StateAttempting, Attempt: cur.Attempt + 1, LastErr: outcome}
	}
}
