package quizzes

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/quizzable/backend/internal/models"
)

func TestBuildReport(t *testing.T) {
	selected := "B"
	results := &models.QuizResults{
		QuizID:   "3f1a9b2c-0000-0000-0000-000000000000",
		Title:    "chapter-one.pdf",
		Score:    20,
		MaxScore: 30,
		Percent:  66.7,
		Message:  "Good job!",
		Review: []models.ReviewEntry{
			{
				Position:   1,
				Question:   "The _______ sat on the mat.",
				Choices:    []string{"dog", "cat", "park", "tree"},
				Selected:   &selected,
				Answer:     "B",
				AnswerText: "cat",
				Correct:    true,
			},
			{
				Position:   2,
				Question:   "The dog ran in the _______. " + strings.Repeat("Padding words here. ", 8),
				Choices:    []string{"park", "mat", "cat", "river"},
				Answer:     "A",
				AnswerText: "park",
			},
			{
				Position:   3,
				Question:   "Le _______ restait ouvert. " + strings.Repeat("Détail après détail. ", 8),
				Choices:    []string{"parc", "chat", "café", "lac"},
				Answer:     "C",
				AnswerText: "café",
			},
		},
	}

	data, err := BuildReport("Ada Lovelace", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("report is not a PDF, starts with %q", data[:min(len(data), 8)])
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := deriveTitle("  notes.pdf  "); got != "notes.pdf" {
		t.Errorf("deriveTitle trimming = %q", got)
	}
	if got := deriveTitle(""); got != "Untitled quiz" {
		t.Errorf("deriveTitle empty = %q", got)
	}
	long := strings.Repeat("a", 200)
	if got := deriveTitle(long); len(got) != 120 {
		t.Errorf("deriveTitle length = %d, want 120", len(got))
	}

	// Truncation must not split a multibyte rune mid-sequence.
	accented := strings.Repeat("é", 200)
	got := deriveTitle(accented)
	if !utf8.ValidString(got) {
		t.Errorf("deriveTitle produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 120 {
		t.Errorf("deriveTitle rune count = %d, want 120", n)
	}
}
