package services

import (
	"fmt"

	"quizsrs/internal/models"
)

// ViolationKind classifies one structural or referential defect.
type ViolationKind string

const (
	DuplicateChapterID    ViolationKind = "duplicate-chapter-id"
	DuplicateQuestionID   ViolationKind = "duplicate-question-id"
	DuplicateOptionID     ViolationKind = "duplicate-option-id"
	DanglingCorrectOption ViolationKind = "dangling-correct-option"
	EmptyCorrectSet       ViolationKind = "empty-correct-set"
	InconsistentMastery   ViolationKind = "inconsistent-mastery"
)

// Violation locates and describes one defect. ChapterID/QuestionID/
// OptionID are filled as far as the defect's scope reaches.
type Violation struct {
	Kind       ViolationKind `json:"kind"`
	ChapterID  string        `json:"chapterId,omitempty"`
	QuestionID string        `json:"questionId,omitempty"`
	OptionID   string        `json:"optionId,omitempty"`
	Message    string        `json:"message"`
}

// CheckModule reports every structural and referential defect in the
// module. It never mutates anything: callers decide whether a violation
// blocks an import or merely warns. Question-id uniqueness is checked
// across the whole module, not per chapter.
func CheckModule(m *models.Module) []Violation {
	var out []Violation

	seenChapters := map[string]bool{}
	seenQuestions := map[string]string{} // question id -> chapter id of first sighting
	for ci := range m.Chapters {
		ch := &m.Chapters[ci]
		if seenChapters[ch.ID] {
			out = append(out, Violation{
				Kind:      DuplicateChapterID,
				ChapterID: ch.ID,
				Message:   fmt.Sprintf("chapter id %q appears more than once", ch.ID),
			})
		}
		seenChapters[ch.ID] = true

		for qi := range ch.Questions {
			q := &ch.Questions[qi]
			if first, dup := seenQuestions[q.ID]; dup {
				msg := fmt.Sprintf("question id %q appears more than once", q.ID)
				if first != ch.ID {
					msg = fmt.Sprintf("question id %q appears in chapters %q and %q", q.ID, first, ch.ID)
				}
				out = append(out, Violation{
					Kind:       DuplicateQuestionID,
					ChapterID:  ch.ID,
					QuestionID: q.ID,
					Message:    msg,
				})
			} else {
				seenQuestions[q.ID] = ch.ID
			}
			out = append(out, checkQuestion(ch.ID, q)...)
		}
	}
	return out
}

func checkQuestion(chapterID string, q *models.Question) []Violation {
	var out []Violation

	seenOptions := map[string]bool{}
	for i := range q.Options {
		id := q.Options[i].ID
		if seenOptions[id] {
			out = append(out, Violation{
				Kind:       DuplicateOptionID,
				ChapterID:  chapterID,
				QuestionID: q.ID,
				OptionID:   id,
				Message:    fmt.Sprintf("question %q: option id %q appears more than once", q.ID, id),
			})
		}
		seenOptions[id] = true
	}

	for _, id := range q.CorrectOptionIDs {
		if !seenOptions[id] {
			out = append(out, Violation{
				Kind:       DanglingCorrectOption,
				ChapterID:  chapterID,
				QuestionID: q.ID,
				OptionID:   id,
				Message:    fmt.Sprintf("question %q: correct option %q does not exist", q.ID, id),
			})
		}
	}

	// Empty is tolerated mid-pipeline but flagged so importers can see
	// questions that will come out unanswerable.
	if len(q.CorrectOptionIDs) == 0 {
		out = append(out, Violation{
			Kind:       EmptyCorrectSet,
			ChapterID:  chapterID,
			QuestionID: q.ID,
			Message:    fmt.Sprintf("question %q has no correct options", q.ID),
		})
	}
	return out
}

// CheckMastery reports inconsistencies between a question's mastery
// status and its counters. Used by tests and, optionally, at import time.
func CheckMastery(q *models.Question) []Violation {
	var out []Violation
	bad := func(msg string) {
		out = append(out, Violation{Kind: InconsistentMastery, QuestionID: q.ID, Message: fmt.Sprintf("question %q: %s", q.ID, msg)})
	}

	if q.MasteryLevel < 0 || q.MasteryLevel > 2 {
		bad(fmt.Sprintf("mastery level %d outside [0, 2]", q.MasteryLevel))
	}
	switch q.Status {
	case models.NotAttempted:
		if q.CorrectCount != 0 || q.IncorrectCount != 0 {
			bad("not-attempted but has recorded attempts")
		}
	case models.Failed:
		if q.IncorrectCount == 0 {
			bad("failed but has no incorrect attempts")
		}
		if q.MasteryLevel != 0 {
			bad("failed but mastery level is not 0")
		}
	case models.PassedOnce:
		if q.CorrectCount == 0 {
			bad("passed-once but has no correct attempts")
		}
	case models.Mastered:
		if q.MasteryLevel != 2 {
			bad("mastered but mastery level is not 2")
		}
		if q.NextReviewAt != nil {
			bad("mastered but a review is still scheduled")
		}
	default:
		bad(fmt.Sprintf("unknown status %q", string(q.Status)))
	}
	return out
}
