package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleModule() Module {
	due := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	return Module{
		Name:        "Sample",
		Description: "desc",
		Chapters: []Chapter{{
			ID:   "c1",
			Name: "One",
			Questions: []Question{{
				ID:   "q1",
				Text: "Pick one",
				Type: MultipleChoice,
				Options: []Option{
					{ID: "a", Text: "first"},
					{ID: "b", Text: "second"},
				},
				CorrectOptionIDs:        []string{"b"},
				Explanation:             "because",
				Status:                  PassedOnce,
				MasteryLevel:            1,
				CorrectCount:            1,
				NextReviewAt:            &due,
				IncorrectAnswerHistory:  []string{"a"},
				ShownIncorrectOptionIDs: []string{"a"},
			}},
			TotalQuestions:    1,
			AnsweredQuestions: 1,
			CorrectAnswers:    1,
		}},
	}
}

func TestModuleJSONFieldNames(t *testing.T) {
	b, err := json.Marshal(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	// Interchange shape is fixed; external collaborators depend on it.
	for _, field := range []string{
		`"chapters"`, `"chapterId"`, `"chapterName"`, `"questions"`,
		`"totalQuestions"`, `"answeredQuestions"`, `"correctAnswers"`,
		`"questionId"`, `"questionText"`, `"questionType"`, `"options"`,
		`"optionId"`, `"optionText"`, `"correctOptionIds"`,
		`"explanationText"`, `"status"`, `"masteryLevel"`,
		`"correctCount"`, `"incorrectCount"`, `"nextReviewAt"`,
		`"incorrectAnswerHistory"`, `"shownIncorrectOptionIds"`,
	} {
		if !strings.Contains(s, field) {
			t.Errorf("serialized module missing %s", field)
		}
	}
	if !strings.Contains(s, `"multiple-choice"`) || !strings.Contains(s, `"passed-once"`) {
		t.Errorf("enums not serialized as strings: %s", s)
	}
}

func TestModuleJSONRoundTrip(t *testing.T) {
	in := sampleModule()
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Module
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	b2, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != string(b2) {
		t.Fatalf("round trip changed document:\n%s\n%s", b, b2)
	}
}

func TestQuestionTypeUnmarshalAlias(t *testing.T) {
	var qt QuestionType
	if err := qt.UnmarshalText([]byte("true/false")); err != nil {
		t.Fatal(err)
	}
	if qt != TrueFalse {
		t.Fatalf("qt = %q", qt)
	}
	if err := qt.UnmarshalText([]byte("essay")); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestMasteryStatusUnmarshal(t *testing.T) {
	var st MasteryStatus
	if err := st.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if st != NotAttempted {
		t.Fatalf("empty status = %q, want not-attempted", st)
	}
	if err := st.UnmarshalText([]byte("mastered")); err != nil {
		t.Fatal(err)
	}
	if st != Mastered {
		t.Fatalf("st = %q", st)
	}
	if err := st.UnmarshalText([]byte("winning")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := sampleModule()
	c := m.Clone()

	c.Chapters[0].Questions[0].Options[0].Text = "changed"
	c.Chapters[0].Questions[0].CorrectOptionIDs[0] = "changed"
	*c.Chapters[0].Questions[0].NextReviewAt = time.Time{}

	q := m.Chapters[0].Questions[0]
	if q.Options[0].Text != "first" {
		t.Error("clone shares options")
	}
	if q.CorrectOptionIDs[0] != "b" {
		t.Error("clone shares correct ids")
	}
	if q.NextReviewAt.IsZero() {
		t.Error("clone shares nextReviewAt pointer")
	}
}

func TestOptionByID(t *testing.T) {
	q := sampleModule().Chapters[0].Questions[0]
	if opt := q.OptionByID("b"); opt == nil || opt.Text != "second" {
		t.Fatalf("OptionByID(b) = %+v", opt)
	}
	if opt := q.OptionByID("zzz"); opt != nil {
		t.Fatalf("OptionByID(zzz) = %+v, want nil", opt)
	}
}
