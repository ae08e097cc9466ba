package feedback

import (
	"fmt"
	"strings"

	"github.com/interview-prep/backend/internal/models"
)

func SystemPrompt() string {
	return `You are an experienced interviewer reviewing a candidate's written answers to a mock interview.
Give honest, specific, constructive feedback that a human reviewer can edit before sending.

Respond with a single JSON object and nothing else:
{
  "summary": "two or three sentences on the overall performance",
  "strengths": ["short bullet", "..."],
  "improvements": ["short actionable bullet", "..."],
  "suggestedScore": 0-100
}

An empty answer counts as not answered. Do not invent content the candidate did not write.`
}

// BuildUserPrompt lays out each question next to the candidate's response.
func BuildUserPrompt(mock *models.MockInterview) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Interview type: %s\n\n", mock.Type)
	for i, q := range mock.Questions {
		answer := ""
		if i < len(mock.Responses) {
			answer = strings.TrimSpace(mock.Responses[i])
		}
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&sb, "Q%d: %s\nA%d: %s\n\n", i+1, q, i+1, answer)
	}
	sb.WriteString("Review these answers.")
	return sb.String()
}
