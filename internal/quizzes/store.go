package quizzes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/quizzable/backend/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAnswered = errors.New("question already answered")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Quiz Storage ────────────────────────────────────────

// CreateQuiz inserts the quiz and its questions in one transaction.
func (s *Store) CreateQuiz(ctx context.Context, quiz *models.Quiz, questions []models.QuizQuestion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO quizzes (id, user_id, title, source_kind, requested_count, question_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		quiz.ID, quiz.UserID, quiz.Title, quiz.SourceKind, quiz.RequestedCount, quiz.QuestionCount,
	).Scan(&quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	for _, q := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_questions (quiz_id, position, question, choices, answer, answer_text)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			quiz.ID, q.Position, q.Question, pq.Array(q.Choices), q.Answer, q.AnswerText,
		)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(quizID string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.QueryRow(
		`SELECT q.id, q.user_id, q.title, q.source_kind, q.requested_count,
		        q.question_count, q.score, q.created_at,
		        (SELECT COUNT(*) FROM quiz_answers a WHERE a.quiz_id = q.id)
		 FROM quizzes q WHERE q.id = $1`,
		quizID,
	).Scan(&quiz.ID, &quiz.UserID, &quiz.Title, &quiz.SourceKind, &quiz.RequestedCount,
		&quiz.QuestionCount, &quiz.Score, &quiz.CreatedAt, &quiz.AnsweredCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return &quiz, nil
}

func (s *Store) ListQuizzes(userID int64, limit, offset int) ([]models.Quiz, int, error) {
	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM quizzes WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quizzes: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT q.id, q.user_id, q.title, q.source_kind, q.requested_count,
		        q.question_count, q.score, q.created_at,
		        (SELECT COUNT(*) FROM quiz_answers a WHERE a.quiz_id = q.id)
		 FROM quizzes q WHERE q.user_id = $1
		 ORDER BY q.created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.SourceKind, &q.RequestedCount,
			&q.QuestionCount, &q.Score, &q.CreatedAt, &q.AnsweredCount); err != nil {
			return nil, 0, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, total, rows.Err()
}

// ── Question Storage ────────────────────────────────────

func (s *Store) GetQuestion(quizID string, position int) (*models.QuizQuestion, error) {
	var q models.QuizQuestion
	var choices pq.StringArray
	err := s.db.QueryRow(
		`SELECT quiz_id, position, question, choices, answer, answer_text
		 FROM quiz_questions WHERE quiz_id = $1 AND position = $2`,
		quizID, position,
	).Scan(&q.QuizID, &q.Position, &q.Question, &choices, &q.Answer, &q.AnswerText)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	q.Choices = choices
	q.Answer = strings.TrimSpace(q.Answer)
	return &q, nil
}

func (s *Store) ListQuestions(quizID string) ([]models.QuizQuestion, error) {
	rows, err := s.db.Query(
		`SELECT quiz_id, position, question, choices, answer, answer_text
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY position`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuizQuestion
	for rows.Next() {
		var q models.QuizQuestion
		var choices pq.StringArray
		if err := rows.Scan(&q.QuizID, &q.Position, &q.Question, &choices, &q.Answer, &q.AnswerText); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Choices = choices
		q.Answer = strings.TrimSpace(q.Answer)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ── Answer Storage ──────────────────────────────────────

// SaveAnswer records one graded answer and bumps the quiz score. A second
// answer for the same position returns ErrAlreadyAnswered.
func (s *Store) SaveAnswer(ctx context.Context, quizID string, position int, selected string, correct bool, points int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quiz_answers (quiz_id, position, selected, correct)
		 VALUES ($1, $2, $3, $4)`,
		quizID, position, selected, correct,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyAnswered
		}
		return 0, fmt.Errorf("insert answer: %w", err)
	}

	var score int
	err = tx.QueryRowContext(ctx,
		`UPDATE quizzes SET score = score + $1 WHERE id = $2 RETURNING score`,
		points, quizID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("update score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit answer: %w", err)
	}
	return score, nil
}

func (s *Store) ListAnswers(quizID string) ([]models.QuizAnswer, error) {
	rows, err := s.db.Query(
		`SELECT position, selected, correct, answered_at
		 FROM quiz_answers WHERE quiz_id = $1 ORDER BY position`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.QuizAnswer
	for rows.Next() {
		var a models.QuizAnswer
		if err := rows.Scan(&a.Position, &a.Selected, &a.Correct, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.Selected = strings.TrimSpace(a.Selected)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The quiz_answers (quiz_id, position) constraint makes a
// repeat submission surface as one.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

// UserName returns the display name for the report header.
func (s *Store) UserName(userID int64) (string, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM users WHERE id = $1`, userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user name: %w", err)
	}
	return name, nil
}
