package practice

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/models"
)

// memBank is an in-memory QuestionBank that records every query.
type memBank struct {
	mu        sync.Mutex
	questions []models.Question
	queries   []SampleQuery
	lookups   [][]string
	err       error
}

func (b *memBank) Sample(_ context.Context, q SampleQuery) ([]models.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q)
	if b.err != nil {
		return nil, b.err
	}

	var matches []models.Question
	for _, question := range b.questions {
		if question.Category != q.Category {
			continue
		}
		if (question.Difficulty == q.Difficulty) == q.OtherDifficulty {
			continue
		}
		matches = append(matches, question)
	}
	rand.Shuffle(len(matches), func(i, j int) { matches[i], matches[j] = matches[j], matches[i] })
	if len(matches) > q.Size {
		matches = matches[:q.Size]
	}
	return matches, nil
}

func (b *memBank) FindByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lookups = append(b.lookups, ids)
	if b.err != nil {
		return nil, b.err
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Question
	for _, q := range b.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

// memResults is an in-memory ResultStore.
type memResults struct {
	mu      sync.Mutex
	results []models.TestResult
	err     error
}

func (s *memResults) Save(_ context.Context, r *models.TestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return apperr.Storage("insert result", s.err)
	}
	s.results = append(s.results, *r)
	return nil
}

func (s *memResults) ListByUser(_ context.Context, userID string) ([]models.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, apperr.Storage("list results", s.err)
	}
	var out []models.TestResult
	for _, r := range s.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *memResults) GetByID(_ context.Context, id string) (*models.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, apperr.Storage("get result", s.err)
	}
	for _, r := range s.results {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, apperr.ErrNotFound
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func question(id, category, difficulty string, correct int, options []string, topics ...string) models.Question {
	return models.Question{
		ID:           id,
		Text:         "Question " + id,
		Options:      options,
		CorrectIndex: models.IntPtr(correct),
		Category:     category,
		Difficulty:   difficulty,
		Topics:       topics,
	}
}
