package services

import (
	"errors"
	"testing"

	"quizsrs/internal/models"
)

func selectorQuestion() models.Question {
	return models.Question{
		ID:   "q1",
		Type: models.MultipleChoice,
		Options: []models.Option{
			{ID: "a", Text: "alpha"},
			{ID: "b", Text: "beta"},
			{ID: "c", Text: "gamma"},
			{ID: "d", Text: "delta"},
		},
		CorrectOptionIDs: []string{"b"},
	}
}

func TestSelectMarksCorrectAndPreservesOrder(t *testing.T) {
	q := selectorQuestion()
	opts, err := SelectDisplayedOptions(&q)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 4 {
		t.Fatalf("len = %d, want 4", len(opts))
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if opts[i].ID != want {
			t.Errorf("opts[%d] = %q, want %q (authored order)", i, opts[i].ID, want)
		}
	}
	correct := 0
	for _, o := range opts {
		if o.IsCorrect {
			correct++
			if o.ID != "b" {
				t.Errorf("wrong option marked correct: %q", o.ID)
			}
		}
	}
	if correct != 1 {
		t.Errorf("correct count = %d, want 1", correct)
	}
}

func TestSelectGhostReferenceFails(t *testing.T) {
	q := selectorQuestion()
	q.CorrectOptionIDs = []string{"ghost"}
	_, err := SelectDisplayedOptions(&q)
	if !errors.Is(err, ErrNoCorrectOptions) {
		t.Fatalf("err = %v, want ErrNoCorrectOptions", err)
	}
}

func TestSelectPartiallyDanglingStillWorks(t *testing.T) {
	// One real correct option among dangling ids: the real one survives.
	q := selectorQuestion()
	q.CorrectOptionIDs = []string{"ghost", "b"}
	opts, err := SelectDisplayedOptions(&q)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range opts {
		if o.IsCorrect != (o.ID == "b") {
			t.Errorf("option %q isCorrect = %v", o.ID, o.IsCorrect)
		}
	}
}

func TestSelectEmptyClaimIsLegal(t *testing.T) {
	// No claimed correct answer is a distinct, legal case: everything
	// comes back not-correct, no error.
	q := selectorQuestion()
	q.CorrectOptionIDs = nil
	opts, err := SelectDisplayedOptions(&q)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range opts {
		if o.IsCorrect {
			t.Errorf("option %q marked correct with empty claim", o.ID)
		}
	}
}

func TestSelectNeverThrowsWithResolvableCorrect(t *testing.T) {
	q := selectorQuestion()
	q.CorrectOptionIDs = []string{"a", "c"}
	for level := 0; level <= 2; level++ {
		q.MasteryLevel = level
		opts, err := SelectDisplayedOptions(&q)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		any := false
		for _, o := range opts {
			if o.IsCorrect {
				any = true
			}
		}
		if !any {
			t.Fatalf("level %d: no option marked correct", level)
		}
	}
}

func TestSelectRotationVariesEmphasis(t *testing.T) {
	q := selectorQuestion()
	q.CorrectOptionIDs = []string{"a", "c"}

	firstCorrect := func(level int) string {
		q.MasteryLevel = level
		opts, err := SelectDisplayedOptions(&q)
		if err != nil {
			t.Fatal(err)
		}
		// Incorrect options never move and nothing is dropped.
		if opts[1].ID != "b" || opts[3].ID != "d" || len(opts) != 4 {
			t.Fatalf("level %d: incorrect slots moved: %+v", level, opts)
		}
		for _, o := range opts {
			if o.IsCorrect {
				return o.ID
			}
		}
		t.Fatal("no correct option")
		return ""
	}

	if got := firstCorrect(0); got != "a" {
		t.Errorf("level 0 first correct = %q, want a", got)
	}
	if got := firstCorrect(1); got != "c" {
		t.Errorf("level 1 first correct = %q, want c", got)
	}
	// level mod count wraps.
	if got := firstCorrect(2); got != "a" {
		t.Errorf("level 2 first correct = %q, want a", got)
	}
}

func TestSelectRotationDeterministic(t *testing.T) {
	q := selectorQuestion()
	q.CorrectOptionIDs = []string{"a", "b", "c"}
	q.MasteryLevel = 1
	first, err := SelectDisplayedOptions(&q)
	if err != nil {
		t.Fatal(err)
	}
	second, err := SelectDisplayedOptions(&q)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("selection not deterministic at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSelectMarksLastSelection(t *testing.T) {
	q := selectorQuestion()
	q.LastSelectedOptionID = "c"
	opts, err := SelectDisplayedOptions(&q)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range opts {
		if o.IsSelected != (o.ID == "c") {
			t.Errorf("option %q isSelected = %v", o.ID, o.IsSelected)
		}
	}
}

func TestSelectDoesNotMutateQuestion(t *testing.T) {
	q := selectorQuestion()
	q.CorrectOptionIDs = []string{"a", "c"}
	q.MasteryLevel = 1
	if _, err := SelectDisplayedOptions(&q); err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if q.Options[i].ID != want {
			t.Fatalf("question options mutated: %+v", q.Options)
		}
	}
	if q.CorrectOptionIDs[0] != "a" || q.CorrectOptionIDs[1] != "c" {
		t.Fatalf("correct ids mutated: %v", q.CorrectOptionIDs)
	}
}
