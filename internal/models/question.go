package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	CategoryAptitude  = "Aptitude"
	CategoryCoding    = "Coding"
	CategoryHR        = "HR"
	CategoryVerbal    = "Verbal"
	CategoryTechnical = "Technical"
)

var ValidCategories = map[string]bool{
	CategoryAptitude:  true,
	CategoryCoding:    true,
	CategoryHR:        true,
	CategoryVerbal:    true,
	CategoryTechnical: true,
}

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

var ValidDifficulties = map[string]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// ── Question Bank ──────────────────────────────────────

type Question struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	Options      []string  `json:"options"`
	CorrectIndex *int      `json:"correctIndex"`
	Explanation  string    `json:"explanation"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	Topics       []string  `json:"topics"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks a question before it is written to a bank.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if !ValidCategories[q.Category] {
		return fmt.Errorf("invalid category %q", q.Category)
	}
	if !ValidDifficulties[q.Difficulty] {
		return fmt.Errorf("invalid difficulty %q", q.Difficulty)
	}
	if len(q.Options) > 0 {
		if q.CorrectIndex == nil {
			return fmt.Errorf("correctIndex is required when options are present")
		}
		if *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("correctIndex %d out of range for %d options", *q.CorrectIndex, len(q.Options))
		}
	}
	return nil
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// IntPtr is a convenience for optional indexes in literals.
func IntPtr(v int) *int {
	return &v
}
