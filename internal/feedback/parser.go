package feedback

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Draft is the structured review an LLM returns.
type Draft struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
	SuggestedScore *int     `json:"suggestedScore"`
}

// ParseDraft decodes an LLM response, tolerating markdown code fences.
func ParseDraft(content string) (*Draft, error) {
	content = stripCodeFences(content)

	var d Draft
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return nil, fmt.Errorf("unmarshal feedback JSON: %w", err)
	}
	if strings.TrimSpace(d.Summary) == "" && len(d.Strengths) == 0 && len(d.Improvements) == 0 {
		return nil, fmt.Errorf("feedback response is empty")
	}
	if d.SuggestedScore != nil {
		s := min(max(*d.SuggestedScore, 0), 100)
		d.SuggestedScore = &s
	}
	return &d, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// Render formats the draft as plain text for the reviewer's edit box.
func (d *Draft) Render() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(d.Summary))
	writeList(&sb, "Strengths", d.Strengths)
	writeList(&sb, "To improve", d.Improvements)
	if d.SuggestedScore != nil {
		fmt.Fprintf(&sb, "\n\nSuggested score: %d", *d.SuggestedScore)
	}
	return strings.TrimSpace(sb.String())
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n\n%s:", title)
	for _, item := range items {
		fmt.Fprintf(sb, "\n- %s", strings.TrimSpace(item))
	}
}
