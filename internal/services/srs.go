package services

import (
	"time"

	"quizsrs/internal/models"
)

// SRSPolicy holds the scheduling intervals. They are policy, not
// structural invariants: zero values fall back to the stock defaults.
type SRSPolicy struct {
	FirstInterval  time.Duration // zero → 30s
	RepeatInterval time.Duration // zero → 10m
	RetryInterval  time.Duration // zero → 30s
}

// DefaultSRSPolicy returns the stock intervals: 30 seconds to the first
// review, 10 minutes on repeat climbs, 30 seconds after a miss.
func DefaultSRSPolicy() SRSPolicy {
	return SRSPolicy{
		FirstInterval:  30 * time.Second,
		RepeatInterval: 10 * time.Minute,
		RetryInterval:  30 * time.Second,
	}
}

func (p SRSPolicy) withDefaults() SRSPolicy {
	d := DefaultSRSPolicy()
	if p.FirstInterval <= 0 {
		p.FirstInterval = d.FirstInterval
	}
	if p.RepeatInterval <= 0 {
		p.RepeatInterval = d.RepeatInterval
	}
	if p.RetryInterval <= 0 {
		p.RetryInterval = d.RetryInterval
	}
	return p
}

// MasteryState is the snapshot of a question's spaced-repetition fields
// that Advance transforms. It is extracted from and applied back to a
// Question so the engine itself never touches authored content.
type MasteryState struct {
	Status          models.MasteryStatus
	MasteryLevel    int
	CorrectCount    int
	IncorrectCount  int
	LastAttemptedAt *time.Time
	NextReviewAt    *time.Time
}

// SRSEngine advances mastery state after each attempt. The wall clock is
// injectable; apart from it the engine is a pure function.
type SRSEngine struct {
	policy SRSPolicy
	now    func() time.Time
}

// NewSRSEngine creates an engine with the given policy. Zero intervals
// take defaults.
func NewSRSEngine(policy SRSPolicy) *SRSEngine {
	return &SRSEngine{
		policy: policy.withDefaults(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the engine that reads time from now.
func (e *SRSEngine) WithClock(now func() time.Time) *SRSEngine {
	return &SRSEngine{policy: e.policy, now: now}
}

// Advance computes the next mastery state for one attempt outcome.
//
// Correct: the level climbs one step, capped at 2. Reaching 2 means
// mastered and no further review; otherwise the question is passed-once
// and the next review lands after FirstInterval on the very first
// correct attempt, RepeatInterval on later climbs.
//
// Incorrect: the level resets to 0 and a retry is scheduled after
// RetryInterval. A question with a correct attempt on record demotes to
// passed-once (including from mastered); one without demotes to failed.
//
// The level never leaves [0, 2]; out-of-range inputs are clamped before
// the transition.
func (e *SRSEngine) Advance(state MasteryState, isCorrect bool) MasteryState {
	next := state
	next.MasteryLevel = clampLevel(next.MasteryLevel)

	now := e.now()
	next.LastAttemptedAt = &now

	if isCorrect {
		firstCorrect := next.CorrectCount == 0
		next.CorrectCount++
		if next.MasteryLevel < 2 {
			next.MasteryLevel++
		}
		if next.MasteryLevel == 2 {
			next.Status = models.Mastered
			next.NextReviewAt = nil
			return next
		}
		next.Status = models.PassedOnce
		interval := e.policy.RepeatInterval
		if firstCorrect {
			interval = e.policy.FirstInterval
		}
		due := now.Add(interval)
		next.NextReviewAt = &due
		return next
	}

	next.IncorrectCount++
	next.MasteryLevel = 0
	if next.CorrectCount > 0 {
		next.Status = models.PassedOnce
	} else {
		next.Status = models.Failed
	}
	due := now.Add(e.policy.RetryInterval)
	next.NextReviewAt = &due
	return next
}

// ApplyOutcome is the whole-question wrapper around Advance: it runs the
// transition and also records which option was picked, appends wrong
// picks to the history, and remembers which incorrect options the
// learner has now seen. Value in, value out; the input is not mutated.
func (e *SRSEngine) ApplyOutcome(q models.Question, selectedOptionID string, isCorrect bool) models.Question {
	out := q.Clone()
	state := ExtractMasteryState(&out)
	ApplyMasteryState(&out, e.Advance(state, isCorrect))

	out.LastSelectedOptionID = selectedOptionID
	if !isCorrect && selectedOptionID != "" {
		out.IncorrectAnswerHistory = append(out.IncorrectAnswerHistory, selectedOptionID)
		if !contains(out.ShownIncorrectOptionIDs, selectedOptionID) {
			out.ShownIncorrectOptionIDs = append(out.ShownIncorrectOptionIDs, selectedOptionID)
		}
	}
	return out
}

// ExtractMasteryState snapshots the mastery-tracking fields of q.
func ExtractMasteryState(q *models.Question) MasteryState {
	return MasteryState{
		Status:          q.Status,
		MasteryLevel:    q.MasteryLevel,
		CorrectCount:    q.CorrectCount,
		IncorrectCount:  q.IncorrectCount,
		LastAttemptedAt: q.LastAttemptedAt,
		NextReviewAt:    q.NextReviewAt,
	}
}

// ApplyMasteryState writes a snapshot back onto q.
func ApplyMasteryState(q *models.Question, s MasteryState) {
	q.Status = s.Status
	q.MasteryLevel = s.MasteryLevel
	q.CorrectCount = s.CorrectCount
	q.IncorrectCount = s.IncorrectCount
	q.LastAttemptedAt = s.LastAttemptedAt
	q.NextReviewAt = s.NextReviewAt
}

func clampLevel(l int) int {
	if l < 0 {
		return 0
	}
	if l > 2 {
		return 2
	}
	return l
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
