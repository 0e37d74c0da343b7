package exam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/examforge/examsim/pkg/http/errors"
)

func newTestMux(t *testing.T, clock *fakeClock) (*http.ServeMux, *Service) {
	t.Helper()
	pool := buildPool(allCategories, allDifficulties, 10)
	svc, _ := newTestService(t, pool, clock)
	handlers := NewHTTPHandlers(svc, zerolog.New(io.Discard))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/exam-types", handlers.ListExamTypes)
	mux.HandleFunc("POST /v1/exams", handlers.StartExam)
	mux.HandleFunc("POST /v1/exams/{id}/answers", handlers.SubmitAnswer)
	mux.HandleFunc("PUT /v1/exams/{id}/flags/{index}", handlers.Flag)
	mux.HandleFunc("DELETE /v1/exams/{id}/flags/{index}", handlers.Unflag)
	mux.HandleFunc("GET /v1/exams/{id}/time", handlers.Time)
	mux.HandleFunc("POST /v1/exams/{id}/timeout-check", handlers.CheckTimeout)
	mux.HandleFunc("GET /v1/exams/{id}/summary", handlers.Summary)
	mux.HandleFunc("GET /v1/exams/{id}/results", handlers.Results)
	return mux, svc
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func startExam(t *testing.T, mux *http.ServeMux) startExamResponse {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/v1/exams", startExamRequest{ExamType: "quick"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp startExamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHTTPListExamTypes(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())

	rec := doJSON(t, mux, http.MethodGet, "/v1/exam-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ExamTypes []Config `json:"exam_types"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ExamTypes, 3)
	assert.Equal(t, "standard", resp.ExamTypes[0].Name)
}

func TestHTTPStartExamStripsAnswerKey(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())

	resp := startExam(t, mux)
	assert.Equal(t, 20, resp.TotalQuestions)
	assert.Equal(t, 60, resp.TimeLimitMinutes)
	require.Len(t, resp.Questions, 20)
	assert.Equal(t, 1, resp.Questions[0].Number)

	// Re-encode and make sure no correct_answer leaks out.
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct_answer")
}

func TestHTTPStartExamUnknownType(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())

	rec := doJSON(t, mux, http.MethodPost, "/v1/exams", startExamRequest{ExamType: "midterm"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, httperrors.ErrCodeUnknownExam, resp.Error)
}

func TestHTTPStartExamMissingType(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())

	rec := doJSON(t, mux, http.MethodPost, "/v1/exams", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPSubmitFlow(t *testing.T) {
	clock := newFakeClock()
	mux, svc := newTestMux(t, clock)
	resp := startExam(t, mux)

	session, err := svc.store.Get(t.Context(), resp.ExamID)
	require.NoError(t, err)

	for i := 0; i < 19; i++ {
		rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/v1/exams/%s/answers", resp.ExamID), submitAnswerRequest{
			QuestionIndex:    i,
			Answer:           session.Questions[i].CorrectAnswer,
			TimeSpentSeconds: 45,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/v1/exams/%s/answers", resp.ExamID), submitAnswerRequest{
		QuestionIndex:    19,
		Answer:           session.Questions[19].CorrectAnswer,
		TimeSpentSeconds: 45,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome SubmitOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	require.True(t, outcome.ExamCompleted)
	assert.Equal(t, 1.0, outcome.Results.Score)

	// Results endpoint serves the stored result afterwards.
	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/v1/exams/%s/results", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Another submit conflicts.
	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/v1/exams/%s/answers", resp.ExamID), submitAnswerRequest{
		QuestionIndex: 20,
		Answer:        "A",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHTTPSubmitOutOfOrder(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())
	resp := startExam(t, mux)

	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/v1/exams/%s/answers", resp.ExamID), submitAnswerRequest{
		QuestionIndex: 7,
		Answer:        "A",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, httperrors.ErrCodeOutOfOrder, errResp.Error)
}

func TestHTTPFlagRoundTrip(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())
	resp := startExam(t, mux)

	rec := doJSON(t, mux, http.MethodPut, fmt.Sprintf("/v1/exams/%s/flags/3", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/v1/exams/%s/summary", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Progress.FlaggedQuestions)

	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/v1/exams/%s/flags/3", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPut, fmt.Sprintf("/v1/exams/%s/flags/notanumber", resp.ExamID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPTimeAndTimeout(t *testing.T) {
	clock := newFakeClock()
	mux, _ := newTestMux(t, clock)
	resp := startExam(t, mux)

	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/v1/exams/%s/timeout-check", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exam_completed":false`)

	clock.Advance(61 * time.Minute)

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/v1/exams/%s/time", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status TimeStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.RemainingMinutes)
	assert.True(t, status.AutoSubmit)

	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/v1/exams/%s/timeout-check", resp.ExamID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var outcome SubmitOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	require.True(t, outcome.ExamCompleted)
	assert.Equal(t, 0.0, outcome.Results.Score)
}

func TestHTTPUnknownExam(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())

	rec := doJSON(t, mux, http.MethodGet, "/v1/exams/EXAM_NOPE/summary", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/v1/exams/EXAM_NOPE/answers", submitAnswerRequest{Answer: "A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPResultsBeforeCompletion(t *testing.T) {
	mux, _ := newTestMux(t, newFakeClock())
	resp := startExam(t, mux)

	rec := doJSON(t, mux, http.MethodGet, fmt.Sprintf("/v1/exams/%s/results", resp.ExamID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, httperrors.ErrCodeExamInProgress, errResp.Error)
}
