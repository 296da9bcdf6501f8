package models

import (
	"encoding"
	"fmt"
)

// QuestionType tags how a question is authored and presented.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
)

// MasteryStatus is the spaced-repetition state of a question.
//
// failed covers questions whose most recent attempts left no correct
// answer on record (the needs-retry state); passed-once requires at
// least one recorded correct attempt; mastered requires mastery level 2
// and no scheduled review.
type MasteryStatus string

const (
	NotAttempted MasteryStatus = "not-attempted"
	Failed       MasteryStatus = "failed"
	PassedOnce   MasteryStatus = "passed-once"
	Mastered     MasteryStatus = "mastered"
)

// Compile-time interface checks.
var (
	_ encoding.TextMarshaler   = QuestionType("")
	_ encoding.TextUnmarshaler = (*QuestionType)(nil)
	_ encoding.TextMarshaler   = MasteryStatus("")
	_ encoding.TextUnmarshaler = (*MasteryStatus)(nil)
)

// IsValid reports whether t is a known question type.
func (t QuestionType) IsValid() bool {
	return t == MultipleChoice || t == TrueFalse
}

// MarshalText implements encoding.TextMarshaler.
func (t QuestionType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("models: invalid question type: %q", string(t))
	}
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "true/false" is
// accepted as an alias for "true-false" for compatibility with authored
// text imports.
func (t *QuestionType) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case string(MultipleChoice):
		*t = MultipleChoice
	case string(TrueFalse), "true/false":
		*t = TrueFalse
	default:
		return fmt.Errorf("models: invalid question type: %q", s)
	}
	return nil
}

// IsValid reports whether s is a known mastery status.
func (s MasteryStatus) IsValid() bool {
	switch s {
	case NotAttempted, Failed, PassedOnce, Mastered:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (s MasteryStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("models: invalid mastery status: %q", string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string
// decodes to NotAttempted so partially-authored documents normalize
// instead of failing to load.
func (s *MasteryStatus) UnmarshalText(text []byte) error {
	v := MasteryStatus(text)
	if len(text) == 0 {
		*s = NotAttempted
		return nil
	}
	if !v.IsValid() {
		return fmt.Errorf("models: invalid mastery status: %q", string(text))
	}
	*s = v
	return nil
}
