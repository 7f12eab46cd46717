package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"learnhub/config"

	"github.com/go-resty/resty/v2"
)

// QuizQA pairs a quiz question with the student's answer for feedback generation.
type QuizQA struct {
	QuestionID uint   `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

// QuestionFeedback is the per-question feedback shape returned by the grader.
type QuestionFeedback struct {
	QuestionID uint   `json:"question_id"`
	Feedback   string `json:"feedback"`
}

// AssignmentGrade is the structured grading result for an assignment.
type AssignmentGrade struct {
	Criteria json.RawMessage `json:"criteria"`
	Total    *int            `json:"total"`
	Grade    string          `json:"grade"`
	Feedback string          `json:"feedback"`
}

// GradingClient is the external AI grading collaborator. It is untrusted,
// possibly slow and possibly failing; callers own the fallback behavior.
type GradingClient interface {
	QuizFeedback(ctx context.Context, pairs []QuizQA) ([]QuestionFeedback, error)
	GradeAssignment(ctx context.Context, instructions, answer string) (*AssignmentGrade, error)
}

// Grading is the process-wide grading client. Tests substitute a stub here.
var Grading GradingClient = &chatGradingClient{}

// InitGradingClient builds the real chat-completions backed client from config.
func InitGradingClient() {
	Grading = &chatGradingClient{
		client: resty.New().
			SetTimeout(time.Duration(config.AppConfig.GradingTimeoutSeconds) * time.Second),
	}
}

// chatGradingClient talks to an OpenAI-compatible chat completions API.
type chatGradingClient struct {
	client *resty.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *chatGradingClient) complete(ctx context.Context, system, user string) (string, error) {
	if g.client == nil {
		g.client = resty.New().SetTimeout(30 * time.Second)
	}

	body := chatRequest{
		Model: config.AppConfig.GradingModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var result chatResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(config.AppConfig.GradingApiKey).
		SetBody(body).
		SetResult(&result).
		Post(config.AppConfig.GradingApiURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("grading request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("grading api error (status %d): %s", resp.StatusCode(), resp.String())
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("grading api returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// QuizFeedback asks the grader for one natural-language comment per question.
func (g *chatGradingClient) QuizFeedback(ctx context.Context, pairs []QuizQA) ([]QuestionFeedback, error) {
	payload, err := json.Marshal(pairs)
	if err != nil {
		return nil, err
	}

	system := "You are a tutor reviewing a student's quiz answers. " +
		"For every question return a short, encouraging feedback sentence. " +
		`Respond with a JSON array only: [{"question_id": <id>, "feedback": "<text>"}]`

	content, err := g.complete(ctx, system, string(payload))
	if err != nil {
		return nil, err
	}

	raw, ok := ExtractJSONBlock(content)
	if !ok {
		return nil, fmt.Errorf("no JSON found in grading response")
	}

	var feedback []QuestionFeedback
	if err := json.Unmarshal([]byte(raw), &feedback); err != nil {
		return nil, fmt.Errorf("unparseable quiz feedback: %w", err)
	}
	return feedback, nil
}

// GradeAssignment asks the grader to score a written answer against the
// rubric embedded in the assignment instructions.
func (g *chatGradingClient) GradeAssignment(ctx context.Context, instructions, answer string) (*AssignmentGrade, error) {
	system := "You are grading a student assignment. The instructions may contain an evaluation rubric; " +
		"score the answer against it out of 100 and assign a letter grade. " +
		`Respond with a JSON object only: {"criteria": {"<criterion>": <points>}, "total": <0-100>, "grade": "<letter>", "feedback": "<text>"}`

	user := fmt.Sprintf("Assignment instructions:\n%s\n\nStudent answer:\n%s", instructions, answer)

	content, err := g.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	raw, ok := ExtractJSONBlock(content)
	if !ok {
		return nil, fmt.Errorf("no JSON found in grading response")
	}

	var grade AssignmentGrade
	if err := json.Unmarshal([]byte(raw), &grade); err != nil {
		return nil, fmt.Errorf("unparseable assignment grade: %w", err)
	}
	if grade.Total == nil {
		return nil, fmt.Errorf("assignment grade missing total")
	}
	if *grade.Total < 0 || *grade.Total > 100 {
		return nil, fmt.Errorf("assignment grade total out of range: %d", *grade.Total)
	}
	return &grade, nil
}

// ExtractJSONBlock returns the first balanced JSON array or object embedded in
// s. Graders tend to wrap their JSON in prose; everything around the block is
// ignored. String literals and escapes are respected while balancing.
func ExtractJSONBlock(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
