package practice

import (
	"context"
	"fmt"

	"github.com/interview-prep/backend/internal/models"
)

const (
	MinSampleSize     = 1
	MaxSampleSize     = 100
	DefaultSampleSize = 20
)

// categoryAliases maps the caller-facing vocabulary onto stored categories.
var categoryAliases = map[string]string{
	models.CategoryTechnical: models.CategoryCoding,
	models.CategoryHR:        models.CategoryVerbal,
}

// SampleQuery selects questions of one category. With OtherDifficulty set it
// matches every difficulty except Difficulty.
type SampleQuery struct {
	Category        string
	Difficulty      string
	OtherDifficulty bool
	Size            int
}

// QuestionBank is the read side of a question store.
type QuestionBank interface {
	// Sample draws up to q.Size distinct questions uniformly at random.
	Sample(ctx context.Context, q SampleQuery) ([]models.Question, error)
	// FindByIDs returns the questions that exist among ids, in any order.
	// Unknown or malformed ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
}

// ResolveCategory translates Technical and HR to their stored names. Anything
// else passes through unchanged.
func ResolveCategory(category string) string {
	if resolved, ok := categoryAliases[category]; ok {
		return resolved
	}
	return category
}

func clampSampleSize(count int) int {
	if count < MinSampleSize {
		return MinSampleSize
	}
	if count > MaxSampleSize {
		return MaxSampleSize
	}
	return count
}

// Sample returns up to count questions for category and difficulty. Exact
// matches come first; any shortfall is filled from the same category at other
// difficulties. A small bank yields fewer questions, never an error.
func Sample(ctx context.Context, bank QuestionBank, category, difficulty string, count int) ([]models.Question, error) {
	size := clampSampleSize(count)
	resolved := ResolveCategory(category)

	exact, err := bank.Sample(ctx, SampleQuery{Category: resolved, Difficulty: difficulty, Size: size})
	if err != nil {
		return nil, fmt.Errorf("sample exact: %w", err)
	}
	if len(exact) >= size {
		return exact[:size], nil
	}

	fill, err := bank.Sample(ctx, SampleQuery{
		Category:        resolved,
		Difficulty:      difficulty,
		OtherDifficulty: true,
		Size:            size - len(exact),
	})
	if err != nil {
		return nil, fmt.Errorf("sample fill: %w", err)
	}

	combined := make([]models.Question, 0, len(exact)+len(fill))
	combined = append(combined, exact...)
	combined = append(combined, fill...)
	return combined, nil
}
