package services

import (
	"quizsrs/internal/ident"
	"quizsrs/internal/models"
)

// NormalizeModule fills defaults, repairs surviving id collisions,
// recomputes chapter aggregates and applies the math-escape repair. It
// takes a value and returns a new value, never errors, and is idempotent:
// normalizing an already-normal module is a no-op byte for byte.
//
// Relative to the validator the contract is deliberately split: the
// validator reports duplicates for visibility, the normalizer repairs
// them for robustness. Importers that want both run CheckModule first and
// NormalizeModule second.
func NormalizeModule(m models.Module) models.Module {
	out := m.Clone()

	chIDs := make([]string, len(out.Chapters))
	for i := range out.Chapters {
		chIDs[i] = out.Chapters[i].ID
	}
	for i, id := range ident.MakeUnique(chIDs) {
		out.Chapters[i].ID = id
	}

	var qIDs []string
	for i := range out.Chapters {
		for j := range out.Chapters[i].Questions {
			qIDs = append(qIDs, out.Chapters[i].Questions[j].ID)
		}
	}
	qIDs = ident.MakeUnique(qIDs)

	k := 0
	for i := range out.Chapters {
		ch := &out.Chapters[i]
		for j := range ch.Questions {
			q := &ch.Questions[j]
			q.ID = qIDs[k]
			k++
			normalizeQuestion(q)
		}
		recomputeCounters(ch)
	}
	out.Description = FixMathEscapes(out.Description)
	return out
}

func normalizeQuestion(q *models.Question) {
	if !q.Type.IsValid() {
		q.Type = models.MultipleChoice
	}
	if !q.Status.IsValid() {
		q.Status = models.NotAttempted
	}
	if q.MasteryLevel < 0 {
		q.MasteryLevel = 0
	}
	if q.MasteryLevel > 2 {
		q.MasteryLevel = 2
	}
	if q.CorrectCount < 0 {
		q.CorrectCount = 0
	}
	if q.IncorrectCount < 0 {
		q.IncorrectCount = 0
	}
	if q.Options == nil {
		q.Options = []models.Option{}
	}
	if q.CorrectOptionIDs == nil {
		q.CorrectOptionIDs = []string{}
	}
	if q.IncorrectAnswerHistory == nil {
		q.IncorrectAnswerHistory = []string{}
	}
	if q.ShownIncorrectOptionIDs == nil {
		q.ShownIncorrectOptionIDs = []string{}
	}

	oIDs := make([]string, len(q.Options))
	for i := range q.Options {
		oIDs[i] = q.Options[i].ID
	}
	for i, id := range ident.MakeUnique(oIDs) {
		q.Options[i].ID = id
	}

	q.Text = FixMathEscapes(q.Text)
	q.Explanation = FixMathEscapes(q.Explanation)
	for i := range q.Options {
		q.Options[i].Text = FixMathEscapes(q.Options[i].Text)
	}
}

// recomputeCounters rebuilds the chapter aggregates from the question
// list. Stored aggregate values are never trusted.
func recomputeCounters(ch *models.Chapter) {
	ch.TotalQuestions = len(ch.Questions)
	answered, correct := 0, 0
	for i := range ch.Questions {
		q := &ch.Questions[i]
		if q.Status != models.NotAttempted {
			answered++
		}
		if q.CorrectCount > 0 {
			correct++
		}
	}
	ch.AnsweredQuestions = answered
	ch.CorrectAnswers = correct
}
