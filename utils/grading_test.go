package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "bare object",
			input: `{"total": 80}`,
			want:  `{"total": 80}`,
			ok:    true,
		},
		{
			name:  "object wrapped in prose",
			input: "Here is my assessment:\n\n{\"total\": 80, \"grade\": \"B\"}\n\nLet me know if you need more.",
			want:  `{"total": 80, "grade": "B"}`,
			ok:    true,
		},
		{
			name:  "array in markdown fence",
			input: "```json\n[{\"question_id\": 1, \"feedback\": \"ok\"}]\n```",
			want:  `[{"question_id": 1, "feedback": "ok"}]`,
			ok:    true,
		},
		{
			name:  "nested structures",
			input: `{"criteria": {"clarity": 40}, "items": [1, 2]}`,
			want:  `{"criteria": {"clarity": 40}, "items": [1, 2]}`,
			ok:    true,
		},
		{
			name:  "braces inside string literals",
			input: `{"feedback": "use {braces} and \"quotes\" carefully]"}`,
			want:  `{"feedback": "use {braces} and \"quotes\" carefully]"}`,
			ok:    true,
		},
		{
			name:  "no json at all",
			input: "I could not grade this submission.",
			ok:    false,
		},
		{
			name:  "unterminated object",
			input: `{"total": 80`,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// newChatServer fakes an OpenAI-compatible chat completions endpoint that
// always answers with the given message content.
func newChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func configureGradingClient(t *testing.T, serverURL string) *chatGradingClient {
	t.Helper()
	config.AppConfig = &config.Config{
		GradingApiURL:         serverURL,
		GradingApiKey:         "test-key",
		GradingModel:          "test-model",
		GradingTimeoutSeconds: 5,
	}
	InitGradingClient()
	return Grading.(*chatGradingClient)
}

func TestGradeAssignment(t *testing.T) {
	server := newChatServer(t, "Assessment below.\n\n"+
		`{"criteria": {"clarity": 45, "depth": 40}, "total": 85, "grade": "B", "feedback": "Well argued."}`)
	defer server.Close()

	client := configureGradingClient(t, server.URL)

	grade, err := client.GradeAssignment(context.Background(), "Write an essay.", "My essay.")
	require.NoError(t, err)
	require.NotNil(t, grade.Total)
	assert.Equal(t, 85, *grade.Total)
	assert.Equal(t, "B", grade.Grade)
	assert.Equal(t, "Well argued.", grade.Feedback)
	assert.JSONEq(t, `{"clarity": 45, "depth": 40}`, string(grade.Criteria))
}

func TestGradeAssignmentRejectsMissingTotal(t *testing.T) {
	server := newChatServer(t, `{"grade": "B", "feedback": "no total"}`)
	defer server.Close()

	client := configureGradingClient(t, server.URL)

	_, err := client.GradeAssignment(context.Background(), "i", "a")
	assert.ErrorContains(t, err, "missing total")
}

func TestGradeAssignmentRejectsOutOfRangeTotal(t *testing.T) {
	server := newChatServer(t, `{"total": 140, "grade": "A"}`)
	defer server.Close()

	client := configureGradingClient(t, server.URL)

	_, err := client.GradeAssignment(context.Background(), "i", "a")
	assert.ErrorContains(t, err, "out of range")
}

func TestQuizFeedback(t *testing.T) {
	server := newChatServer(t, `[{"question_id": 1, "feedback": "Good."}, {"question_id": 2, "feedback": "Close, but no."}]`)
	defer server.Close()

	client := configureGradingClient(t, server.URL)

	feedback, err := client.QuizFeedback(context.Background(), []QuizQA{
		{QuestionID: 1, Question: "q1", Answer: "a1", Correct: true},
		{QuestionID: 2, Question: "q2", Answer: "a2", Correct: false},
	})
	require.NoError(t, err)
	require.Len(t, feedback, 2)
	assert.Equal(t, "Good.", feedback[0].Feedback)
	assert.EqualValues(t, 2, feedback[1].QuestionID)
}

func TestQuizFeedbackServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := configureGradingClient(t, server.URL)

	_, err := client.QuizFeedback(context.Background(), []QuizQA{{QuestionID: 1}})
	assert.Error(t, err)
}
