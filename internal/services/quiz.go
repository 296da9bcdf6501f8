package services

import (
	"fmt"
	"time"

	"quizsrs/internal/models"
)

// QuizService runs the answer flow against whole modules: it locates a
// question by id, grades the submitted selection, and applies the
// spaced-repetition outcome. Like the engine it wraps, it works on
// values and never mutates its inputs.
type QuizService struct {
	engine *SRSEngine
}

func NewQuizService(engine *SRSEngine) *QuizService {
	return &QuizService{engine: engine}
}

// AnswerResult reports what SubmitAnswer decided and produced.
type AnswerResult struct {
	Module    models.Module
	Question  models.Question // the question after the outcome was applied
	IsCorrect bool
}

// SubmitAnswer grades selectedOptionID against the question's correct
// set and returns the module with the updated question in place. The
// chapter and question must exist and the selected option must be one of
// the question's options; a selection against a question whose correct
// references are all dangling surfaces the selector's corruption error.
func (s *QuizService) SubmitAnswer(m models.Module, chapterID, questionID, selectedOptionID string) (AnswerResult, error) {
	out := m.Clone()

	ci, qi, err := locateQuestion(&out, chapterID, questionID)
	if err != nil {
		return AnswerResult{}, err
	}
	q := &out.Chapters[ci].Questions[qi]

	if q.OptionByID(selectedOptionID) == nil {
		return AnswerResult{}, NewInvalidError(fmt.Sprintf("option %q does not exist on question %q", selectedOptionID, questionID))
	}
	resolvable := false
	for _, id := range q.CorrectOptionIDs {
		if q.OptionByID(id) != nil {
			resolvable = true
			break
		}
	}
	if !resolvable && len(q.CorrectOptionIDs) > 0 {
		return AnswerResult{}, fmt.Errorf("question %q: %w", questionID, ErrNoCorrectOptions)
	}

	isCorrect := false
	for _, id := range q.CorrectOptionIDs {
		if id == selectedOptionID {
			isCorrect = true
			break
		}
	}

	*q = s.engine.ApplyOutcome(*q, selectedOptionID, isCorrect)
	recomputeCounters(&out.Chapters[ci])

	return AnswerResult{Module: out, Question: q.Clone(), IsCorrect: isCorrect}, nil
}

// DueQuestions returns pointers into m for every question that is ready
// for review at the engine's current time: never attempted, past its
// nextReviewAt, or reset with no review scheduled. Mastered questions
// are never due.
func (s *QuizService) DueQuestions(m *models.Module) []*models.Question {
	now := s.engine.now()
	var due []*models.Question
	for ci := range m.Chapters {
		for qi := range m.Chapters[ci].Questions {
			q := &m.Chapters[ci].Questions[qi]
			if questionDue(q, now) {
				due = append(due, q)
			}
		}
	}
	return due
}

func questionDue(q *models.Question, now time.Time) bool {
	switch q.Status {
	case models.Mastered:
		return false
	case models.NotAttempted:
		return true
	}
	if q.NextReviewAt == nil {
		return true
	}
	return !q.NextReviewAt.After(now)
}

func locateQuestion(m *models.Module, chapterID, questionID string) (int, int, error) {
	for ci := range m.Chapters {
		if m.Chapters[ci].ID != chapterID {
			continue
		}
		for qi := range m.Chapters[ci].Questions {
			if m.Chapters[ci].Questions[qi].ID == questionID {
				return ci, qi, nil
			}
		}
		return 0, 0, NewNotFoundError(fmt.Sprintf("question %q not found in chapter %q", questionID, chapterID))
	}
	return 0, 0, NewNotFoundError(fmt.Sprintf("chapter %q not found", chapterID))
}
