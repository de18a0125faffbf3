package quizzes

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/quizzable/backend/internal/extract"
	"github.com/quizzable/backend/internal/models"
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 30
	maxUploadBytes       = 20 << 20 // 20MB
)

type Handler struct {
	service    *Service
	httpClient *http.Client
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:    service,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// CreateQuiz accepts either a multipart upload (field "file", optional
// "num_questions") or a JSON body with "text" or "url".
func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var params CreateParams
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		params, err = h.uploadParams(w, r)
	} else {
		params, err = h.jsonParams(r)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if params.Count <= 0 {
		params.Count = defaultQuestionCount
	}
	if params.Count > maxQuestionCount {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "num_questions must be between 1 and 30"})
		return
	}

	resp, err := h.service.CreateQuiz(r.Context(), userID, params)
	if errors.Is(err, ErrUnusableText) {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Couldn't extract enough text. Try a different document."})
		return
	}
	if errors.Is(err, ErrNoQuestions) {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Couldn't generate questions from this document."})
		return
	}
	if err != nil {
		log.Printf("[handler] CreateQuiz error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create quiz"})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) uploadParams(w http.ResponseWriter, r *http.Request) (CreateParams, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return CreateParams{}, errors.New("invalid multipart body")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return CreateParams{}, errors.New("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return CreateParams{}, errors.New("failed to read upload")
	}

	text, kind, err := extract.FromUpload(header.Filename, data)
	if err != nil {
		log.Printf("[handler] extraction failed for %q: %v", header.Filename, err)
		return CreateParams{}, errors.New("couldn't read that document")
	}

	count := defaultQuestionCount
	if v := r.FormValue("num_questions"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			count = n
		}
	}

	return CreateParams{
		Title:      header.Filename,
		SourceKind: models.SourceKind(kind),
		Text:       text,
		Count:      count,
	}, nil
}

func (h *Handler) jsonParams(r *http.Request) (CreateParams, error) {
	var req models.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return CreateParams{}, errors.New("invalid request body")
	}

	switch {
	case strings.TrimSpace(req.Text) != "":
		return CreateParams{
			Title:      "Pasted text",
			SourceKind: models.SourceText,
			Text:       req.Text,
			Count:      req.NumQuestions,
		}, nil
	case req.URL != "":
		text, err := extract.FromURL(r.Context(), h.httpClient, req.URL)
		if err != nil {
			log.Printf("[handler] fetch failed for %q: %v", req.URL, err)
			return CreateParams{}, errors.New("couldn't fetch that page")
		}
		return CreateParams{
			Title:      req.URL,
			SourceKind: models.SourceURL,
			Text:       text,
			Count:      req.NumQuestions,
		}, nil
	default:
		return CreateParams{}, errors.New("text, url, or file is required")
	}
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	query := r.URL.Query()
	limit := intQueryParam(query, "limit", 20)
	offset := intQueryParam(query, "offset", 0)

	quizzes, total, err := h.service.ListQuizzes(userID, limit, offset)
	if err != nil {
		log.Printf("[handler] ListQuizzes error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list quizzes"})
		return
	}

	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	writeJSON(w, http.StatusOK, models.QuizListResponse{
		Quizzes:  quizzes,
		Total:    total,
		Page:     offset/max(limit, 1) + 1,
		PageSize: limit,
	})
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	quiz, err := h.service.GetQuiz(userID, mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] GetQuiz error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get quiz"})
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	position, err := strconv.Atoi(vars["n"])
	if err != nil || position < 1 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question number"})
		return
	}

	question, err := h.service.Question(userID, vars["id"], position)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] GetQuestion error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get question"})
		return
	}

	writeJSON(w, http.StatusOK, question)
}

var validSelections = map[string]bool{"A": true, "B": true, "C": true, "D": true}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	position, err := strconv.Atoi(vars["n"])
	if err != nil || position < 1 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question number"})
		return
	}

	var req models.SubmitQuizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Selected = strings.ToUpper(strings.TrimSpace(req.Selected))
	if !validSelections[req.Selected] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "selected must be A, B, C, or D"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), userID, vars["id"], position, req.Selected)
	if errors.Is(err, ErrAlreadyAnswered) {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Question already answered"})
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] SubmitAnswer error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to submit answer"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	results, err := h.service.Results(userID, mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] GetResults error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get results"})
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	quizID := mux.Vars(r)["id"]
	data, err := h.service.Report(userID, quizID)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] DownloadReport error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build report"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-`+quizID+`.pdf"`)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
