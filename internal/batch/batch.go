// Package batch splits a module's questions into small numbered batches
// for offline content editing and merges the edited batches back. Only
// the authored fields travel through a batch; mastery-tracking fields
// stay untouched on the module side, so a merge never clobbers learner
// progress.
package batch

import (
	"fmt"

	"quizsrs/internal/models"
)

// DefaultSize is the stock batch size.
const DefaultSize = 3

// Entry is one question inside a batch, addressed by position. The
// questionId is not editable: on merge it must still match the question
// at that position, which catches batches cut before the module changed.
type Entry struct {
	ChapterIndex     int              `json:"chapterIndex"`
	QuestionIndex    int              `json:"questionIndex"`
	QuestionID       string           `json:"questionId"`
	QuestionText     string           `json:"questionText"`
	Options          []models.Option  `json:"options"`
	CorrectOptionIDs []string         `json:"correctOptionIds"`
	ExplanationText  string           `json:"explanationText"`
}

// Batch is one numbered unit of work.
type Batch struct {
	BatchIndex int     `json:"batchIndex"`
	Questions  []Entry `json:"questions"`
}

// Split flattens the module's questions in document order and cuts them
// into batches of size questions (the last batch may be shorter). A
// non-positive size falls back to DefaultSize.
func Split(m models.Module, size int) []Batch {
	if size <= 0 {
		size = DefaultSize
	}
	var entries []Entry
	for ci := range m.Chapters {
		for qi := range m.Chapters[ci].Questions {
			q := &m.Chapters[ci].Questions[qi]
			entries = append(entries, Entry{
				ChapterIndex:     ci,
				QuestionIndex:    qi,
				QuestionID:       q.ID,
				QuestionText:     q.Text,
				Options:          append([]models.Option(nil), q.Options...),
				CorrectOptionIDs: append([]string(nil), q.CorrectOptionIDs...),
				ExplanationText:  q.Explanation,
			})
		}
	}
	var out []Batch
	for i := 0; i < len(entries); i += size {
		end := i + size
		if end > len(entries) {
			end = len(entries)
		}
		out = append(out, Batch{BatchIndex: len(out), Questions: entries[i:end]})
	}
	return out
}

// Problem is one reason a batch entry was rejected during a merge.
type Problem struct {
	BatchIndex int    `json:"batchIndex"`
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

// Apply merges edited batches back into the module and returns the new
// module plus the entries it refused. An entry is rejected when its
// position no longer exists, when the questionId at that position no
// longer matches (a stale batch produced before the module changed must
// not overwrite the replacement question), when it carries no options,
// or when any of its correctOptionIds fails to resolve against its own
// options; partial application of a broken entry would leave the
// question unanswerable.
func Apply(m models.Module, batches []Batch) (models.Module, []Problem) {
	out := m.Clone()
	var problems []Problem
	for _, b := range batches {
		for _, e := range b.Questions {
			if err := applyEntry(&out, e); err != nil {
				problems = append(problems, Problem{
					BatchIndex: b.BatchIndex,
					QuestionID: e.QuestionID,
					Message:    err.Error(),
				})
			}
		}
	}
	return out, problems
}

func applyEntry(m *models.Module, e Entry) error {
	if e.ChapterIndex < 0 || e.ChapterIndex >= len(m.Chapters) {
		return fmt.Errorf("chapter index %d out of range", e.ChapterIndex)
	}
	ch := &m.Chapters[e.ChapterIndex]
	if e.QuestionIndex < 0 || e.QuestionIndex >= len(ch.Questions) {
		return fmt.Errorf("question index %d out of range in chapter %q", e.QuestionIndex, ch.ID)
	}
	if got := ch.Questions[e.QuestionIndex].ID; got != e.QuestionID {
		return fmt.Errorf("question at position is now %q, not %q; batch is stale", got, e.QuestionID)
	}
	if len(e.Options) == 0 {
		return fmt.Errorf("entry has no options")
	}
	optionIDs := make(map[string]bool, len(e.Options))
	for _, o := range e.Options {
		optionIDs[o.ID] = true
	}
	for _, id := range e.CorrectOptionIDs {
		if !optionIDs[id] {
			return fmt.Errorf("correct option %q does not exist among edited options", id)
		}
	}

	q := &ch.Questions[e.QuestionIndex]
	q.Text = e.QuestionText
	q.Options = append([]models.Option(nil), e.Options...)
	q.CorrectOptionIDs = append([]string(nil), e.CorrectOptionIDs...)
	q.Explanation = e.ExplanationText
	return nil
}
