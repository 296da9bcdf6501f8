// Package parser converts loosely structured quiz text into a draft
// module. It is a line-scanning state machine: module, chapter and
// question headers move it between states, bold control labels move it
// between question-body subsections, and a fence tracker suppresses all
// control-token recognition while the scanner is inside a fenced code
// block. Recoverable defects are collected as diagnostics and the scan
// continues; only a missing module header aborts the parse.
package parser

import (
	"strconv"
	"strings"

	"quizsrs/internal/ident"
	"quizsrs/internal/models"
)

// Diagnostic is one recoverable defect found during a parse.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result is the outcome of a parse. Module is nil on hard failure; a
// non-nil Module together with non-empty Diagnostics is a degraded
// success and the caller chooses its own acceptance threshold.
type Result struct {
	Module      *models.Module `json:"module,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}

// Failed reports whether the parse produced no module at all.
func (r Result) Failed() bool { return r.Module == nil }

type state int

const (
	seekModuleHeader state = iota
	seekChapterHeader     // after the module header, accumulating description
	seekQuestionHeader    // inside a chapter, before its first question
	inQuestionBody
)

// subsection of the question body currently receiving content.
type subsection int

const (
	subPrompt subsection = iota
	subOptions
	subExplanation
)

type scanner struct {
	state state
	sub   subsection
	fence fenceTracker

	module      *models.Module
	descLines   []string
	chapter     *models.Chapter
	question    *models.Question
	rawAnswers  []string // answer labels, resolved when the question ends
	answerSeen  bool
	answerLine  int
	promptLines []string
	explLines   []string
	inExpl      bool // explanation label seen

	chapterOrdinal  int
	questionOrdinal int // within the current chapter

	diags []Diagnostic
}

// Parse scans text and returns a draft module plus diagnostics. The
// draft may still contain duplicate-id or dangling-reference defects
// beyond what the final MakeUnique pass repairs; callers run the
// validator and normalizer on it before storing.
func Parse(text string) Result {
	s := &scanner{}
	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		s.line(i+1, raw)
	}
	s.finish(len(lines))
	return Result{Module: s.module, Diagnostics: s.diags}
}

func (s *scanner) diag(line int, msg string) {
	s.diags = append(s.diags, Diagnostic{Line: line, Message: msg})
}

func (s *scanner) line(n int, raw string) {
	// Inside an open fence nothing is a control token: the line, fence
	// markers included, goes verbatim to whatever buffer is open.
	if s.fence.open() {
		s.fence.observe(raw)
		s.content(n, raw, true)
		return
	}

	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "### "):
		s.startQuestion(n, strings.TrimPrefix(trimmed, "### "))
		return
	case strings.HasPrefix(trimmed, "## "):
		s.startChapter(n, strings.TrimPrefix(trimmed, "## "))
		return
	case strings.HasPrefix(trimmed, "# "):
		s.startModule(n, strings.TrimPrefix(trimmed, "# "))
		return
	}

	if s.state == inQuestionBody {
		if label, rest, ok := controlLabel(trimmed); ok {
			s.control(n, label, rest)
			return
		}
	}

	if s.fence.observe(raw) {
		// A fence just opened; the marker line itself is content.
		s.content(n, raw, true)
		return
	}
	s.content(n, raw, false)
}

func (s *scanner) startModule(n int, rest string) {
	if s.module != nil {
		s.diag(n, "duplicate module header ignored: "+strings.TrimSpace(rest))
		return
	}
	name, _ := splitInlineID(rest)
	if name == "" {
		name = "Untitled module"
		s.diag(n, "module header has no name")
	}
	s.module = &models.Module{Name: name}
	s.state = seekChapterHeader
}

func (s *scanner) startChapter(n int, rest string) {
	if s.module == nil {
		s.diag(n, "chapter header before module header")
		return
	}
	s.endQuestion(n)
	s.endChapter()
	name, id := splitInlineID(rest)
	if name == "" {
		name = "Untitled chapter"
		s.diag(n, "chapter header has no name")
	}
	if id == "" {
		id = "chapter_" + strconv.Itoa(s.chapterOrdinal+1)
	}
	s.chapter = &models.Chapter{ID: id, Name: name}
	s.chapterOrdinal++
	s.questionOrdinal = 0
	s.state = seekQuestionHeader
}

func (s *scanner) startQuestion(n int, rest string) {
	if s.module == nil {
		s.diag(n, "question header before module header")
		return
	}
	s.endQuestion(n)
	if s.chapter == nil {
		// Recover content authored before the first chapter header.
		s.diag(n, "question header before first chapter header")
		s.chapter = &models.Chapter{ID: "chapter_" + strconv.Itoa(s.chapterOrdinal+1), Name: "Chapter " + strconv.Itoa(s.chapterOrdinal+1)}
		s.chapterOrdinal++
		s.questionOrdinal = 0
	}
	prompt, id := splitInlineID(rest)
	if id == "" {
		id = ident.Generate(s.chapter.ID, s.questionOrdinal)
	}
	s.question = &models.Question{ID: id, Type: models.MultipleChoice}
	s.questionOrdinal++
	s.promptLines = nil
	s.explLines = nil
	s.rawAnswers = nil
	s.answerSeen = false
	s.inExpl = false
	s.sub = subPrompt
	if prompt != "" {
		s.promptLines = append(s.promptLines, prompt)
	}
	s.state = inQuestionBody
}

// control handles a recognized bold label outside any fence.
func (s *scanner) control(n int, label, rest string) {
	switch label {
	case "type":
		var t models.QuestionType
		if err := t.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(rest)))); err != nil {
			s.diag(n, "question "+s.question.ID+": unknown type "+strings.TrimSpace(rest)+", assuming multiple-choice")
			t = models.MultipleChoice
		}
		s.question.Type = t
	case "options":
		s.sub = subOptions
		if strings.TrimSpace(rest) != "" {
			s.diag(n, "question "+s.question.ID+": text after Options label ignored")
		}
	case "answer":
		if s.answerSeen {
			s.diag(n, "question "+s.question.ID+": duplicate answer line")
		}
		s.answerSeen = true
		s.answerLine = n
		for _, part := range strings.Split(rest, ",") {
			if p := strings.TrimSpace(part); p != "" {
				s.rawAnswers = append(s.rawAnswers, p)
			}
		}
		if len(s.rawAnswers) == 0 {
			s.diag(n, "question "+s.question.ID+": answer line is empty")
		}
		s.sub = subPrompt
	case "explanation":
		s.inExpl = true
		s.sub = subExplanation
		if t := strings.TrimSpace(rest); t != "" {
			s.explLines = append(s.explLines, t)
		}
	}
}

// content routes an ordinary line to the buffer the current state owns.
// fenced marks lines that belong to an open (or just-opened) fence and
// must be kept verbatim.
func (s *scanner) content(n int, raw string, fenced bool) {
	switch s.state {
	case seekModuleHeader:
		if strings.TrimSpace(raw) != "" {
			s.diag(n, "content before module header ignored")
		}
	case seekChapterHeader:
		if strings.TrimSpace(raw) != "" {
			s.descLines = append(s.descLines, strings.TrimSpace(raw))
		}
	case seekQuestionHeader:
		if strings.TrimSpace(raw) != "" {
			s.diag(n, "content between chapter and question headers ignored")
		}
	case inQuestionBody:
		s.bodyContent(n, raw, fenced)
	}
}

func (s *scanner) bodyContent(n int, raw string, fenced bool) {
	switch s.sub {
	case subOptions:
		if fenced {
			// Example code interrupting an options block belongs to the
			// question body, not to any option.
			s.promptLines = append(s.promptLines, raw)
			return
		}
		if strings.TrimSpace(raw) == "" {
			return
		}
		if opt, ok := parseOptionLine(raw); ok {
			s.question.Options = append(s.question.Options, opt)
			return
		}
		s.diag(n, "question "+s.question.ID+": expected option entry, got "+strings.TrimSpace(raw))
	case subExplanation:
		s.explLines = append(s.explLines, raw)
	default:
		s.promptLines = append(s.promptLines, raw)
	}
}

// endQuestion finalizes the question under construction, if any:
// true/false options are synthesized, answer labels resolved, and the
// missing-piece diagnostics emitted.
func (s *scanner) endQuestion(n int) {
	q := s.question
	if q == nil {
		return
	}
	s.question = nil

	q.Text = joinBlock(s.promptLines)
	q.Explanation = joinBlock(s.explLines)
	if q.Text == "" {
		s.diag(n, "question "+q.ID+": empty prompt")
	}
	if !s.inExpl || q.Explanation == "" {
		s.diag(n, "question "+q.ID+": missing explanation")
	}

	if q.Type == models.TrueFalse {
		if len(q.Options) > 0 {
			s.diag(n, "question "+q.ID+": options block ignored for true/false question")
		}
		q.Options = []models.Option{
			{ID: "true", Text: "True"},
			{ID: "false", Text: "False"},
		}
	} else if len(q.Options) == 0 {
		s.diag(n, "question "+q.ID+": multiple-choice question has no options")
	}

	if !s.answerSeen {
		s.diag(n, "question "+q.ID+": missing answer line")
	}
	for _, label := range s.rawAnswers {
		id := strings.ToLower(strings.TrimSpace(label))
		if q.OptionByID(id) == nil {
			s.diag(s.answerLine, "question "+q.ID+": answer references unknown option "+label)
		}
		q.CorrectOptionIDs = append(q.CorrectOptionIDs, id)
	}

	s.chapter.Questions = append(s.chapter.Questions, *q)
}

func (s *scanner) endChapter() {
	if s.chapter == nil {
		return
	}
	s.module.Chapters = append(s.module.Chapters, *s.chapter)
	s.chapter = nil
}

// finish flushes whatever is still accumulated at end of input and runs
// the final module-wide id deduplication pass.
func (s *scanner) finish(lastLine int) {
	if s.fence.open() {
		s.diag(lastLine, "unterminated code fence; remaining text kept as content")
	}
	if s.module == nil {
		s.diag(lastLine, "no module header found")
		return
	}
	s.endQuestion(lastLine)
	s.endChapter()
	s.module.Description = joinBlock(s.descLines)
	dedupeIDs(s.module)
}

// dedupeIDs applies ident.MakeUnique to chapter ids, to question ids
// across the whole module, and to option ids within each question.
func dedupeIDs(m *models.Module) {
	chIDs := make([]string, len(m.Chapters))
	for i := range m.Chapters {
		chIDs[i] = m.Chapters[i].ID
	}
	for i, id := range ident.MakeUnique(chIDs) {
		m.Chapters[i].ID = id
	}

	var qIDs []string
	for i := range m.Chapters {
		for j := range m.Chapters[i].Questions {
			qIDs = append(qIDs, m.Chapters[i].Questions[j].ID)
		}
	}
	qIDs = ident.MakeUnique(qIDs)
	k := 0
	for i := range m.Chapters {
		for j := range m.Chapters[i].Questions {
			m.Chapters[i].Questions[j].ID = qIDs[k]
			k++
		}
	}

	for i := range m.Chapters {
		for j := range m.Chapters[i].Questions {
			q := &m.Chapters[i].Questions[j]
			oIDs := make([]string, len(q.Options))
			for o := range q.Options {
				oIDs[o] = q.Options[o].ID
			}
			for o, id := range ident.MakeUnique(oIDs) {
				q.Options[o].ID = id
			}
		}
	}
}

// controlLabel recognizes the bold labels that terminate or retag a
// question-body subsection: **Type:**, **Options:**, **Answer:**,
// **Correct:**, **Explanation:**. It returns the canonical label name
// and any text following the label on the same line.
func controlLabel(line string) (label, rest string, ok bool) {
	if !strings.HasPrefix(line, "**") {
		return "", "", false
	}
	end := strings.Index(line[2:], ":**")
	if end < 0 {
		return "", "", false
	}
	name := strings.ToLower(strings.TrimSpace(line[2 : 2+end]))
	rest = strings.TrimSpace(line[2+end+len(":**"):])
	switch name {
	case "type", "options", "answer", "explanation":
		return name, rest, true
	case "correct":
		return "answer", rest, true
	}
	return "", "", false
}

// parseOptionLine parses one labeled option entry: "- A) text",
// "- A. text" or "* A) text". The option id is the lower-cased label.
func parseOptionLine(raw string) (models.Option, bool) {
	t := strings.TrimSpace(raw)
	if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
		t = strings.TrimSpace(t[2:])
	}
	i := 0
	for i < len(t) && isLabelChar(t[i]) {
		i++
	}
	if i == 0 || i >= len(t) {
		return models.Option{}, false
	}
	if t[i] != ')' && t[i] != '.' {
		return models.Option{}, false
	}
	label := t[:i]
	text := strings.TrimSpace(t[i+1:])
	if text == "" {
		return models.Option{}, false
	}
	return models.Option{ID: strings.ToLower(label), Text: text}, true
}

func isLabelChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// splitInlineID strips a trailing "<!-- id: x -->" annotation from a
// header line, returning the remaining text and the id (empty if the
// annotation is absent or malformed).
func splitInlineID(line string) (text, id string) {
	t := strings.TrimSpace(line)
	open := strings.LastIndex(t, "<!--")
	if open < 0 || !strings.HasSuffix(t, "-->") {
		return t, ""
	}
	inner := strings.TrimSpace(t[open+len("<!--") : len(t)-len("-->")])
	lower := strings.ToLower(inner)
	if !strings.HasPrefix(lower, "id:") {
		return t, ""
	}
	id = strings.TrimSpace(inner[len("id:"):])
	return strings.TrimSpace(t[:open]), id
}

// joinBlock joins accumulated lines, trimming leading and trailing blank
// lines but preserving interior blanks (and fenced content) verbatim.
func joinBlock(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
