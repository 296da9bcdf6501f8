package services

import (
	"fmt"

	"quizsrs/internal/models"
)

// SelectDisplayedOptions builds the presentation-time projection of a
// question's options. It never mutates the question and returns a fresh
// slice on every call.
//
// Correct-option references that point at no real option are discarded.
// If that leaves nothing of a non-empty claim, the question is corrupt
// and ErrNoCorrectOptions is returned. An empty claim on input is the
// legal deliberately-unanswerable case: every option comes back with
// IsCorrect false.
//
// When several correct options exist, the mastery level rotates which
// correct option surfaces first: the correct options cycle through the
// positions correct options occupy in the authored order (shifted by
// masteryLevel mod count), incorrect options keep their exact authored
// positions, and nothing is ever dropped, so the question stays
// answerable on every review.
func SelectDisplayedOptions(q *models.Question) ([]models.DisplayedOption, error) {
	correct := make(map[string]bool, len(q.CorrectOptionIDs))
	for _, id := range q.CorrectOptionIDs {
		if q.OptionByID(id) != nil {
			correct[id] = true
		}
	}
	if len(correct) == 0 && len(q.CorrectOptionIDs) > 0 {
		return nil, fmt.Errorf("question %q: %w", q.ID, ErrNoCorrectOptions)
	}

	out := make([]models.DisplayedOption, len(q.Options))
	for i, opt := range q.Options {
		out[i] = models.DisplayedOption{
			Option:     opt,
			IsCorrect:  correct[opt.ID],
			IsSelected: opt.ID != "" && opt.ID == q.LastSelectedOptionID,
		}
	}

	if len(correct) > 1 {
		rotateCorrect(out, q.MasteryLevel)
	}
	return out, nil
}

// rotateCorrect cycles the correct options among their own slots by
// level mod count.
func rotateCorrect(opts []models.DisplayedOption, level int) {
	var slots []int
	for i := range opts {
		if opts[i].IsCorrect {
			slots = append(slots, i)
		}
	}
	n := len(slots)
	shift := level % n
	if shift < 0 {
		shift += n
	}
	if shift == 0 {
		return
	}
	rotated := make([]models.DisplayedOption, n)
	for i, slot := range slots {
		rotated[(i+shift)%n] = opts[slot]
	}
	for i, slot := range slots {
		opts[slot] = rotated[i]
	}
}
