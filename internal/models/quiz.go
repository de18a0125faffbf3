package models

import "time"

// MCQ is one generated multiple-choice question before persistence.
type MCQ struct {
	Question   string   `json:"question"`
	Choices    []string `json:"choices"`
	Answer     string   `json:"answer"`
	AnswerText string   `json:"answer_text"`
}

// SourceKind identifies where quiz text came from.
type SourceKind string

const (
	SourcePDF  SourceKind = "pdf"
	SourceText SourceKind = "text"
	SourceURL  SourceKind = "url"
)

type Quiz struct {
	ID             string     `json:"id"`
	UserID         int64      `json:"-"`
	Title          string     `json:"title"`
	SourceKind     SourceKind `json:"source_kind"`
	RequestedCount int        `json:"requested_count"`
	QuestionCount  int        `json:"question_count"`
	AnsweredCount  int        `json:"answered_count"`
	Score          int        `json:"score"`
	CreatedAt      time.Time  `json:"created_at"`
}

// QuizQuestion is one stored question. Answer fields are withheld from
// JSON so grading stays server-side.
type QuizQuestion struct {
	QuizID     string   `json:"-"`
	Position   int      `json:"position"`
	Question   string   `json:"question"`
	Choices    []string `json:"choices"`
	Answer     string   `json:"-"`
	AnswerText string   `json:"-"`
}

type QuizAnswer struct {
	Position   int       `json:"position"`
	Selected   string    `json:"selected"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// ── Requests ────────────────────────────────────────────

type CreateQuizRequest struct {
	Text         string `json:"text"`
	URL          string `json:"url"`
	NumQuestions int    `json:"num_questions"`
}

type SubmitQuizAnswerRequest struct {
	Selected string `json:"selected"`
}

// ── Responses ───────────────────────────────────────────

type CreateQuizResponse struct {
	Quiz          Quiz          `json:"quiz"`
	FirstQuestion *QuizQuestion `json:"first_question,omitempty"`
	Shortfall     int           `json:"shortfall,omitempty"`
	Message       string        `json:"message,omitempty"`
}

type QuizAnswerResponse struct {
	Correct      bool   `json:"correct"`
	Answer       string `json:"answer"`
	AnswerText   string `json:"answer_text"`
	PointsEarned int    `json:"points_earned"`
	Score        int    `json:"score"`
}

type QuizListResponse struct {
	Quizzes  []Quiz `json:"quizzes"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// ReviewEntry pairs a question with the answer the user gave, if any.
type ReviewEntry struct {
	Position   int      `json:"position"`
	Question   string   `json:"question"`
	Choices    []string `json:"choices"`
	Selected   *string  `json:"selected"`
	Answer     string   `json:"answer"`
	AnswerText string   `json:"answer_text"`
	Correct    bool     `json:"correct"`
}

type QuizResults struct {
	QuizID   string        `json:"quiz_id"`
	Title    string        `json:"title"`
	Score    int           `json:"score"`
	MaxScore int           `json:"max_score"`
	Percent  float64       `json:"percent"`
	Message  string        `json:"message"`
	Review   []ReviewEntry `json:"review"`
}
