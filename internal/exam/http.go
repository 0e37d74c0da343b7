package exam

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	httperrors "github.com/examforge/examsim/pkg/http/errors"
)

var (
	examsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_sessions_started_total",
		Help: "Exam sessions started, by exam type.",
	}, []string{"exam_type"})
	examsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_sessions_completed_total",
		Help: "Exam sessions completed, by exam type and completion mode.",
	}, []string{"exam_type", "mode"})
	answersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exam_answers_submitted_total",
		Help: "Answers accepted by the exam engine.",
	})
)

// HTTPHandlers provides the REST surface over the simulator.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for exam endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "exam_http").Logger(),
	}
}

// startExamRequest is the payload for POST /v1/exams.
type startExamRequest struct {
	ExamType string `json:"exam_type"`
}

// questionView is a question as shown to the candidate: no answer key.
type questionView struct {
	Number     int    `json:"number"`
	ID         string `json:"id"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Text       string `json:"question"`
	OptionA    string `json:"option_a"`
	OptionB    string `json:"option_b"`
	OptionC    string `json:"option_c"`
	OptionD    string `json:"option_d"`
}

type startExamResponse struct {
	ExamID           string         `json:"exam_id"`
	ExamType         string         `json:"exam_type"`
	TotalQuestions   int            `json:"total_questions"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	PassingScore     float64        `json:"passing_score"`
	Questions        []questionView `json:"questions"`
}

// ListExamTypes handles GET /v1/exam-types.
func (h *HTTPHandlers) ListExamTypes(w http.ResponseWriter, r *http.Request) {
	names := h.service.Registry().Names()
	configs := make([]Config, 0, len(names))
	for _, name := range names {
		cfg, err := h.service.Registry().Get(name)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	respondJSON(w, http.StatusOK, map[string]any{"exam_types": configs})
}

// StartExam handles POST /v1/exams.
func (h *HTTPHandlers) StartExam(w http.ResponseWriter, r *http.Request) {
	var req startExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.ExamType == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "exam_type is required", "exam_type")
		return
	}

	session, err := h.service.Start(r.Context(), req.ExamType)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownExam, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("exam_type", req.ExamType).Msg("failed to start exam")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeExamStartFailed, "could not start exam")
		return
	}

	examsStarted.WithLabelValues(req.ExamType).Inc()

	resp := startExamResponse{
		ExamID:           session.ExamID,
		ExamType:         session.ExamType,
		TotalQuestions:   len(session.Questions),
		TimeLimitMinutes: session.Config.TimeLimitMinutes,
		PassingScore:     session.Config.PassingScore,
		Questions:        make([]questionView, 0, len(session.Questions)),
	}
	for i, q := range session.Questions {
		resp.Questions = append(resp.Questions, questionView{
			Number:     i + 1,
			ID:         q.ID,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			Text:       q.Text,
			OptionA:    q.OptionA,
			OptionB:    q.OptionB,
			OptionC:    q.OptionC,
			OptionD:    q.OptionD,
		})
	}
	respondJSON(w, http.StatusCreated, resp)
}

// submitAnswerRequest is the payload for POST /v1/exams/{id}/answers.
type submitAnswerRequest struct {
	QuestionIndex    int     `json:"question_index"`
	Answer           string  `json:"answer"`
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
}

// SubmitAnswer handles POST /v1/exams/{id}/answers.
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("id")

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	outcome, err := h.service.Submit(r.Context(), examID, req.QuestionIndex, req.Answer, req.TimeSpentSeconds)
	if err != nil {
		h.respondExamError(w, examID, err, httperrors.ErrCodeSubmitFailed)
		return
	}

	answersSubmitted.Inc()
	if outcome.ExamCompleted {
		examsCompleted.WithLabelValues(outcome.Results.ExamType, "submitted").Inc()
	}
	respondJSON(w, http.StatusOK, outcome)
}

// Flag handles PUT /v1/exams/{id}/flags/{index}.
func (h *HTTPHandlers) Flag(w http.ResponseWriter, r *http.Request) {
	h.flagOp(w, r, h.service.Flag)
}

// Unflag handles DELETE /v1/exams/{id}/flags/{index}.
func (h *HTTPHandlers) Unflag(w http.ResponseWriter, r *http.Request) {
	h.flagOp(w, r, h.service.Unflag)
}

func (h *HTTPHandlers) flagOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, examID string, index int) error) {
	examID := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "index must be a non-negative integer", "index")
		return
	}

	if err := op(r.Context(), examID, index); err != nil {
		h.respondExamError(w, examID, err, httperrors.ErrCodeFlagFailed)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Time handles GET /v1/exams/{id}/time.
func (h *HTTPHandlers) Time(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("id")

	status, err := h.service.Time(r.Context(), examID)
	if err != nil {
		h.respondExamError(w, examID, err, httperrors.ErrCodeInternalError)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// CheckTimeout handles POST /v1/exams/{id}/timeout-check: finishes the exam
// when its time is up.
func (h *HTTPHandlers) CheckTimeout(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("id")

	result, err := h.service.CheckTimeout(r.Context(), examID)
	if err != nil {
		h.respondExamError(w, examID, err, httperrors.ErrCodeInternalError)
		return
	}
	if result == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"exam_completed": false})
		return
	}
	examsCompleted.WithLabelValues(result.ExamType, "auto_submit").Inc()
	respondJSON(w, http.StatusOK, SubmitOutcome{ExamCompleted: true, Results: result})
}

// Summary handles GET /v1/exams/{id}/summary.
func (h *HTTPHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("id")

	summary, err := h.service.Summary(r.Context(), examID)
	if err != nil {
		h.respondExamError(w, examID, err, httperrors.ErrCodeInternalError)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Results handles GET /v1/exams/{id}/results.
func (h *HTTPHandlers) Results(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("id")

	result, err := h.service.Results(r.Context(), examID)
	if err != nil {
		h.respondExamError(w, examID, err, httperrors.ErrCodeInternalError)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// respondExamError translates engine errors to HTTP codes.
func (h *HTTPHandlers) respondExamError(w http.ResponseWriter, examID string, err error, fallbackCode string) {
	switch {
	case errors.Is(err, ErrExamNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeExamNotFound, err.Error())
	case errors.Is(err, ErrExamCompleted):
		httperrors.RespondConflict(w, httperrors.ErrCodeExamCompleted, err.Error())
	case errors.Is(err, ErrOutOfOrder):
		httperrors.RespondConflict(w, httperrors.ErrCodeOutOfOrder, err.Error())
	case errors.Is(err, ErrExamInProgress):
		httperrors.RespondConflict(w, httperrors.ErrCodeExamInProgress, err.Error())
	default:
		h.logger.Error().Err(err).Str("exam_id", examID).Msg("exam operation failed")
		httperrors.RespondError(w, http.StatusInternalServerError, fallbackCode, "exam operation failed")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
