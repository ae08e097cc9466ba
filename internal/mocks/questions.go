package mocks

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/interview-prep/backend/internal/models"
)

//go:embed questions.yaml
var defaultQuestionsYAML []byte

// QuestionSets maps each mock interview type to its fixed questions.
type QuestionSets map[models.MockType][]string

// ParseQuestionSets decodes a YAML document keyed by interview type. Both
// types must have at least one question.
func ParseQuestionSets(data []byte) (QuestionSets, error) {
	var sets QuestionSets
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse question sets: %w", err)
	}
	for _, t := range []models.MockType{models.MockHR, models.MockTechnical} {
		if len(sets[t]) == 0 {
			return nil, fmt.Errorf("question set %q is empty", t)
		}
	}
	for t := range sets {
		if t != models.MockHR && t != models.MockTechnical {
			return nil, fmt.Errorf("unknown interview type %q", t)
		}
	}
	return sets, nil
}

// DefaultQuestionSets returns the embedded question sets.
func DefaultQuestionSets() QuestionSets {
	sets, err := ParseQuestionSets(defaultQuestionsYAML)
	if err != nil {
		panic(err)
	}
	return sets
}
