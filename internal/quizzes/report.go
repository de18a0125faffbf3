package quizzes

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/quizzable/backend/internal/models"
)

// BuildReport renders a printable results sheet: header, score badge,
// and a per-question review table.
func BuildReport(userName string, results *models.QuizResults) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, "Quiz Results", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 8, results.Title, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, userName, "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10,
		fmt.Sprintf("%d / %d (%.0f%%)", results.Score, results.MaxScore, results.Percent),
		"", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, results.Message, "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(118, 7, "Question", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Chosen", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Answer", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, entry := range results.Review {
		selected := "-"
		if entry.Selected != nil {
			selected = *entry.Selected
			if entry.Correct {
				selected += " (correct)"
			}
		}

		stem := entry.Question
		if r := []rune(stem); len(r) > 110 {
			stem = string(r[:107]) + "..."
		}

		pdf.CellFormat(12, 7, fmt.Sprintf("%d", entry.Position), "1", 0, "C", false, 0, "")
		pdf.CellFormat(118, 7, stem, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, selected, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%s. %s", entry.Answer, entry.AnswerText), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, "Generated by QuizZable - quiz ID "+results.QuizID, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
