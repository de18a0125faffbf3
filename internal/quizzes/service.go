package quizzes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/quizzable/backend/internal/generator"
	"github.com/quizzable/backend/internal/models"
)

var (
	// ErrUnusableText marks documents too short to quiz on.
	ErrUnusableText = errors.New("not enough text to generate questions")
	// ErrNoQuestions marks text the generator could not turn into a
	// single valid question.
	ErrNoQuestions = errors.New("no questions could be generated")
)

// minTextLen is the shortest document worth attempting. Anything under
// this rarely yields even one candidate sentence.
const minTextLen = 100

type Service struct {
	store     *Store
	generator *generator.Generator
}

func NewService(store *Store, gen *generator.Generator) *Service {
	return &Service{store: store, generator: gen}
}

type CreateParams struct {
	Title      string
	SourceKind models.SourceKind
	Text       string
	Count      int
}

// CreateQuiz generates questions from extracted document text and
// persists the quiz. Fewer questions than requested is reported via
// Shortfall, not an error; zero questions is ErrNoQuestions.
func (s *Service) CreateQuiz(ctx context.Context, userID int64, params CreateParams) (*models.CreateQuizResponse, error) {
	text := strings.TrimSpace(params.Text)
	if len(text) < minTextLen {
		return nil, ErrUnusableText
	}

	mcqs := s.generator.Generate(text, params.Count)
	if len(mcqs) == 0 {
		return nil, ErrNoQuestions
	}

	quiz := &models.Quiz{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          deriveTitle(params.Title),
		SourceKind:     params.SourceKind,
		RequestedCount: params.Count,
		QuestionCount:  len(mcqs),
	}

	questions := make([]models.QuizQuestion, len(mcqs))
	for i, m := range mcqs {
		questions[i] = models.QuizQuestion{
			QuizID:     quiz.ID,
			Position:   i + 1,
			Question:   m.Question,
			Choices:    m.Choices,
			Answer:     m.Answer,
			AnswerText: m.AnswerText,
		}
	}

	if err := s.store.CreateQuiz(ctx, quiz, questions); err != nil {
		return nil, fmt.Errorf("persist quiz: %w", err)
	}

	resp := &models.CreateQuizResponse{Quiz: *quiz, FirstQuestion: &questions[0]}
	if len(mcqs) < params.Count {
		resp.Shortfall = params.Count - len(mcqs)
		resp.Message = fmt.Sprintf("Generated %d of %d requested questions; the document did not support more.",
			len(mcqs), params.Count)
		log.Printf("[quizzes] quiz %s short by %d questions", quiz.ID, resp.Shortfall)
	}
	return resp, nil
}

// GetQuiz fetches a quiz owned by userID.
func (s *Service) GetQuiz(userID int64, quizID string) (*models.Quiz, error) {
	quiz, err := s.store.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrNotFound
	}
	return quiz, nil
}

func (s *Service) ListQuizzes(userID int64, limit, offset int) ([]models.Quiz, int, error) {
	return s.store.ListQuizzes(userID, limit, offset)
}

// Question returns one question with its answer fields withheld (they
// carry json:"-" tags, grading stays server-side).
func (s *Service) Question(userID int64, quizID string, position int) (*models.QuizQuestion, error) {
	if _, err := s.GetQuiz(userID, quizID); err != nil {
		return nil, err
	}
	return s.store.GetQuestion(quizID, position)
}

// SubmitAnswer grades one selection against the stored question. Each
// question accepts exactly one answer.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, quizID string, position int, selected string) (*models.QuizAnswerResponse, error) {
	if _, err := s.GetQuiz(userID, quizID); err != nil {
		return nil, err
	}

	question, err := s.store.GetQuestion(quizID, position)
	if err != nil {
		return nil, err
	}

	correct := selected == question.Answer
	points := AnswerPoints(correct)

	score, err := s.store.SaveAnswer(ctx, quizID, position, selected, correct, points)
	if err != nil {
		return nil, err
	}

	return &models.QuizAnswerResponse{
		Correct:      correct,
		Answer:       question.Answer,
		AnswerText:   question.AnswerText,
		PointsEarned: points,
		Score:        score,
	}, nil
}

// Results assembles the final score and the per-question review.
func (s *Service) Results(userID int64, quizID string) (*models.QuizResults, error) {
	quiz, err := s.GetQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.store.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswers(quizID)
	if err != nil {
		return nil, err
	}

	answered := make(map[int]models.QuizAnswer, len(answers))
	for _, a := range answers {
		answered[a.Position] = a
	}

	results := &models.QuizResults{
		QuizID:   quiz.ID,
		Title:    quiz.Title,
		Score:    quiz.Score,
		MaxScore: MaxScore(quiz.QuestionCount),
	}
	results.Percent = Percent(results.Score, results.MaxScore)
	results.Message = ResultMessage(results.Percent)

	for _, q := range questions {
		entry := models.ReviewEntry{
			Position:   q.Position,
			Question:   q.Question,
			Choices:    q.Choices,
			Answer:     q.Answer,
			AnswerText: q.AnswerText,
		}
		if a, ok := answered[q.Position]; ok {
			selected := a.Selected
			entry.Selected = &selected
			entry.Correct = a.Correct
		}
		results.Review = append(results.Review, entry)
	}
	return results, nil
}

// Report renders the results as a printable PDF.
func (s *Service) Report(userID int64, quizID string) ([]byte, error) {
	results, err := s.Results(userID, quizID)
	if err != nil {
		return nil, err
	}
	name, err := s.store.UserName(userID)
	if err != nil {
		return nil, err
	}
	display := models.User{Name: name}.DisplayName()
	return BuildReport(display, results)
}

// deriveTitle trims a source name down to something presentable.
func deriveTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled quiz"
	}
	if r := []rune(title); len(r) > 120 {
		title = string(r[:120])
	}
	return title
}
