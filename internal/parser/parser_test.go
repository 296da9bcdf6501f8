package parser

import (
	"strings"
	"testing"

	"quizsrs/internal/models"
)

func mustParse(t *testing.T, text string) *models.Module {
	t.Helper()
	res := Parse(text)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	return res.Module
}

func hasDiag(res Result, substr string) bool {
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

const basicDoc = `# Networking Basics

A short refresher on TCP/IP.

## Transport Layer <!-- id: transport -->

### Which protocol guarantees in-order delivery? <!-- id: q-tcp -->
**Type:** multiple-choice

**Options:**
- A) UDP
- B) TCP

**Answer:** B

**Explanation:**
TCP retransmits and reorders segments; UDP does neither.
`

func TestParseBasicMultipleChoice(t *testing.T) {
	res := Parse(basicDoc)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	m := res.Module
	if m.Name != "Networking Basics" {
		t.Errorf("module name = %q", m.Name)
	}
	if m.Description != "A short refresher on TCP/IP." {
		t.Errorf("description = %q", m.Description)
	}
	if len(m.Chapters) != 1 {
		t.Fatalf("chapters = %d, want 1", len(m.Chapters))
	}
	ch := m.Chapters[0]
	if ch.ID != "transport" || ch.Name != "Transport Layer" {
		t.Errorf("chapter = %q %q", ch.ID, ch.Name)
	}
	if len(ch.Questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(ch.Questions))
	}
	q := ch.Questions[0]
	if q.ID != "q-tcp" {
		t.Errorf("question id = %q", q.ID)
	}
	if q.Type != models.MultipleChoice {
		t.Errorf("type = %q", q.Type)
	}
	if len(q.Options) != 2 || q.Options[0].ID != "a" || q.Options[1].Text != "TCP" {
		t.Errorf("options = %+v", q.Options)
	}
	if len(q.CorrectOptionIDs) != 1 || q.CorrectOptionIDs[0] != "b" {
		t.Errorf("correct = %v", q.CorrectOptionIDs)
	}
	if !strings.Contains(q.Explanation, "retransmits") {
		t.Errorf("explanation = %q", q.Explanation)
	}
}

func TestParseTrueFalse(t *testing.T) {
	doc := `# M

## C

### The default TTL is always 64.
**Type:** true/false

**Answer:** False

**Explanation:** TTL defaults vary by operating system.
`
	m := mustParse(t, doc)
	q := m.Chapters[0].Questions[0]
	if q.Type != models.TrueFalse {
		t.Fatalf("type = %q", q.Type)
	}
	if len(q.Options) != 2 || q.Options[0].ID != "true" || q.Options[1].ID != "false" {
		t.Fatalf("options = %+v", q.Options)
	}
	if len(q.CorrectOptionIDs) != 1 || q.CorrectOptionIDs[0] != "false" {
		t.Fatalf("correct = %v", q.CorrectOptionIDs)
	}
	if q.Explanation != "TTL defaults vary by operating system." {
		t.Fatalf("explanation = %q", q.Explanation)
	}
}

func TestFenceSuppressesControlTokens(t *testing.T) {
	doc := "# M\n\n## C\n\n### What does this print?\n" +
		"```go\n" +
		"// **Answer:** is a label outside fences only\n" +
		"### not a header\n" +
		"fmt.Println(\"hi\")\n" +
		"```\n" +
		"\n**Options:**\n- A) hi\n- B) nothing\n\n**Answer:** A\n\n**Explanation:** Plain print.\n"
	res := Parse(doc)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	q := res.Module.Chapters[0].Questions[0]
	for _, want := range []string{"```go", "// **Answer:** is a label outside fences only", "### not a header", "fmt.Println(\"hi\")", "```"} {
		if !strings.Contains(q.Text, want) {
			t.Errorf("prompt missing %q:\n%s", want, q.Text)
		}
	}
	if len(q.CorrectOptionIDs) != 1 || q.CorrectOptionIDs[0] != "a" {
		t.Errorf("correct = %v", q.CorrectOptionIDs)
	}
}

func TestUntermintedFenceFlushes(t *testing.T) {
	doc := "# M\n\n## C\n\n### Q1\n**Options:**\n- A) x\n- B) y\n\n**Answer:** A\n\n**Explanation:**\nSee:\n```\nleft open\n"
	res := Parse(doc)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	if !hasDiag(res, "unterminated") {
		t.Fatalf("missing unterminated-fence diagnostic: %v", res.Diagnostics)
	}
	q := res.Module.Chapters[0].Questions[0]
	if !strings.Contains(q.Explanation, "left open") {
		t.Fatalf("fenced tail not flushed: %q", q.Explanation)
	}
}

func TestNoModuleHeaderIsHardFailure(t *testing.T) {
	res := Parse("## Chapter without a module\n\n### Q\n")
	if !res.Failed() {
		t.Fatalf("expected hard failure, got module %+v", res.Module)
	}
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected diagnostics on hard failure")
	}
}

func TestMissingPiecesAreDiagnosticsNotFailures(t *testing.T) {
	doc := "# M\n\n## C\n\n### Q without anything else\n\n### Q2\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** fine\n"
	res := Parse(doc)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	for _, want := range []string{"missing explanation", "no options", "missing answer"} {
		if !hasDiag(res, want) {
			t.Errorf("missing diagnostic %q in %v", want, res.Diagnostics)
		}
	}
	if n := len(res.Module.Chapters[0].Questions); n != 2 {
		t.Fatalf("questions = %d, want 2 (best-effort)", n)
	}
}

func TestGeneratedIdentifiers(t *testing.T) {
	doc := "# M\n\n## First Steps\n\n### Q one\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** e\n\n### Q two\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** e\n"
	m := mustParse(t, doc)
	ch := m.Chapters[0]
	if ch.ID != "chapter_1" {
		t.Errorf("chapter id = %q", ch.ID)
	}
	if ch.Questions[0].ID != "chapter_1_q1" || ch.Questions[1].ID != "chapter_1_q2" {
		t.Errorf("question ids = %q %q", ch.Questions[0].ID, ch.Questions[1].ID)
	}
}

func TestDuplicateQuestionIDsDedupedModuleWide(t *testing.T) {
	doc := "# M\n\n## A\n\n### First <!-- id: q1 -->\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** e\n\n## B\n\n### Second <!-- id: q1 -->\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** e\n"
	m := mustParse(t, doc)
	a := m.Chapters[0].Questions[0].ID
	b := m.Chapters[1].Questions[0].ID
	if a == b {
		t.Fatalf("duplicate survived: %q", a)
	}
	if a != "q1" || b != "q1_1" {
		t.Errorf("ids = %q %q, want q1 and q1_1", a, b)
	}
}

func TestAnswerReferencingUnknownOption(t *testing.T) {
	doc := "# M\n\n## C\n\n### Q\n**Options:**\n- A) x\n- B) y\n\n**Answer:** C\n\n**Explanation:** e\n"
	res := Parse(doc)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	if !hasDiag(res, "unknown option") {
		t.Fatalf("missing diagnostic: %v", res.Diagnostics)
	}
	q := res.Module.Chapters[0].Questions[0]
	// The dangling reference is kept so the validator reports it too.
	if len(q.CorrectOptionIDs) != 1 || q.CorrectOptionIDs[0] != "c" {
		t.Fatalf("correct = %v", q.CorrectOptionIDs)
	}
}

func TestMultipleCorrectAnswers(t *testing.T) {
	doc := "# M\n\n## C\n\n### Pick all primes\n**Options:**\n- A) 2\n- B) 4\n- C) 5\n\n**Answer:** A, C\n\n**Explanation:** 2 and 5 are prime.\n"
	m := mustParse(t, doc)
	q := m.Chapters[0].Questions[0]
	if len(q.CorrectOptionIDs) != 2 || q.CorrectOptionIDs[0] != "a" || q.CorrectOptionIDs[1] != "c" {
		t.Fatalf("correct = %v", q.CorrectOptionIDs)
	}
}

func TestCorrectLabelAliasAndDotSeparator(t *testing.T) {
	doc := "# M\n\n## C\n\n### Q\n**Options:**\n- A. x\n- B. y\n\n**Correct:** B\n\n**Explanation:** e\n"
	m := mustParse(t, doc)
	q := m.Chapters[0].Questions[0]
	if len(q.CorrectOptionIDs) != 1 || q.CorrectOptionIDs[0] != "b" {
		t.Fatalf("correct = %v", q.CorrectOptionIDs)
	}
}

func TestTildeFenceAndMismatchedMarkers(t *testing.T) {
	doc := "# M\n\n## C\n\n### Q\n~~~\n```\nstill inside the tilde fence\n```\n~~~\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** e\n"
	res := Parse(doc)
	if res.Failed() || hasDiag(res, "unterminated") {
		t.Fatalf("tilde fence mishandled: %v", res.Diagnostics)
	}
	q := res.Module.Chapters[0].Questions[0]
	if !strings.Contains(q.Text, "still inside the tilde fence") {
		t.Fatalf("prompt = %q", q.Text)
	}
}

func TestQuestionBeforeChapterRecovers(t *testing.T) {
	doc := "# M\n\n### Orphan question\n**Options:**\n- A) x\n\n**Answer:** A\n\n**Explanation:** e\n"
	res := Parse(doc)
	if res.Failed() {
		t.Fatalf("parse failed: %v", res.Diagnostics)
	}
	if !hasDiag(res, "before first chapter") {
		t.Fatalf("missing recovery diagnostic: %v", res.Diagnostics)
	}
	if len(res.Module.Chapters) != 1 || len(res.Module.Chapters[0].Questions) != 1 {
		t.Fatalf("recovered shape wrong: %+v", res.Module)
	}
}
