package models

import "time"

// Module is the top-level study document: a named, ordered collection of
// chapters. It is the single root of truth; chapters and questions are
// owned by their module and have no life outside it.
type Module struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Chapters    []Chapter `json:"chapters"`
}

// Chapter groups questions. The three counters are redundant aggregates;
// NormalizeModule recomputes them from the question list and stored
// values are never trusted.
type Chapter struct {
	ID        string     `json:"chapterId"`
	Name      string     `json:"chapterName"`
	Questions []Question `json:"questions"`

	TotalQuestions    int `json:"totalQuestions"`
	AnsweredQuestions int `json:"answeredQuestions"`
	CorrectAnswers    int `json:"correctAnswers"`
}

// Question carries the authored content plus the mutable mastery-tracking
// fields the SRS engine advances. Question ids are unique across the
// whole module, option ids within their question.
type Question struct {
	ID               string       `json:"questionId"`
	Text             string       `json:"questionText"`
	Type             QuestionType `json:"questionType"`
	Options          []Option     `json:"options"`
	CorrectOptionIDs []string     `json:"correctOptionIds"`
	Explanation      string       `json:"explanationText"`

	Status               MasteryStatus `json:"status"`
	MasteryLevel         int           `json:"masteryLevel"`
	CorrectCount         int           `json:"correctCount"`
	IncorrectCount       int           `json:"incorrectCount"`
	LastSelectedOptionID string        `json:"lastSelectedOptionId,omitempty"`
	LastAttemptedAt      *time.Time    `json:"lastAttemptedAt,omitempty"`
	NextReviewAt         *time.Time    `json:"nextReviewAt"`

	// Append-only log of wrong picks, and the distractors the learner
	// has already seen across reviews.
	IncorrectAnswerHistory  []string `json:"incorrectAnswerHistory"`
	ShownIncorrectOptionIDs []string `json:"shownIncorrectOptionIds"`
}

// Option is one answer choice. The id is unique within its question.
type Option struct {
	ID   string `json:"optionId"`
	Text string `json:"optionText"`
}

// DisplayedOption is a presentation-time projection of an Option. It is
// rebuilt on every call to the selector and never persisted.
type DisplayedOption struct {
	Option
	IsCorrect  bool `json:"isCorrect"`
	IsSelected bool `json:"isSelected"`
}

// OptionByID returns the option with the given id, or nil.
func (q *Question) OptionByID(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the module. Core operations are
// value-in/value-out; callers that hold the single mutable copy clone
// before handing it out.
func (m Module) Clone() Module {
	out := m
	out.Chapters = make([]Chapter, len(m.Chapters))
	for i, ch := range m.Chapters {
		out.Chapters[i] = ch.clone()
	}
	return out
}

func (c Chapter) clone() Chapter {
	out := c
	out.Questions = make([]Question, len(c.Questions))
	for i, q := range c.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]Option(nil), q.Options...)
	out.CorrectOptionIDs = append([]string(nil), q.CorrectOptionIDs...)
	out.IncorrectAnswerHistory = append([]string(nil), q.IncorrectAnswerHistory...)
	out.ShownIncorrectOptionIDs = append([]string(nil), q.ShownIncorrectOptionIDs...)
	if q.LastAttemptedAt != nil {
		v := *q.LastAttemptedAt
		out.LastAttemptedAt = &v
	}
	if q.NextReviewAt != nil {
		v := *q.NextReviewAt
		out.NextReviewAt = &v
	}
	return out
}
