package practice

import (
	"math"
	"sort"

	"github.com/interview-prep/backend/internal/models"
)

// MissingQuestionText marks a snapshot entry whose question is no longer in
// the bank.
const MissingQuestionText = "[question not found]"

const defaultTopic = "General"

// GradingResult is the outcome of grading one submission.
type GradingResult struct {
	Total             int
	CorrectAnswers    int
	WrongAnswers      int
	Score             int
	TopicResults      []models.TopicResult
	CorrectAnswersMap map[string]int
	QuestionsSnapshot []models.QuestionSnapshot
}

type topicTally struct {
	correct int
	total   int
}

// Grade scores answers against the resolved questions. Answers whose question
// is absent still count toward Total but never toward CorrectAnswers or any
// topic.
func Grade(answers []models.Answer, questions []models.Question) GradingResult {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	res := GradingResult{
		CorrectAnswersMap: make(map[string]int),
		QuestionsSnapshot: make([]models.QuestionSnapshot, 0, len(answers)),
	}

	var topicOrder []string
	tallies := make(map[string]*topicTally)

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			res.QuestionsSnapshot = append(res.QuestionsSnapshot, models.QuestionSnapshot{
				ID:      a.QuestionID,
				Text:    MissingQuestionText,
				Options: []string{},
				Topics:  []string{},
			})
			continue
		}

		if q.CorrectIndex != nil {
			res.CorrectAnswersMap[q.ID] = *q.CorrectIndex
		}
		correct := isCorrect(a.SelectedIndex, q.CorrectIndex)
		if correct {
			res.CorrectAnswers++
		}

		for _, topic := range topicsFor(q) {
			t, seen := tallies[topic]
			if !seen {
				t = &topicTally{}
				tallies[topic] = t
				topicOrder = append(topicOrder, topic)
			}
			t.total++
			if correct {
				t.correct++
			}
		}

		res.QuestionsSnapshot = append(res.QuestionsSnapshot, snapshotOf(q))
	}

	res.Total = len(answers)
	res.WrongAnswers = res.Total - res.CorrectAnswers
	res.Score = percent(res.CorrectAnswers, res.Total)

	res.TopicResults = make([]models.TopicResult, 0, len(topicOrder))
	for _, name := range topicOrder {
		t := tallies[name]
		res.TopicResults = append(res.TopicResults, models.TopicResult{
			Name:    name,
			Correct: t.correct,
			Total:   t.total,
			Pct:     percent(t.correct, t.total),
		})
	}
	// Ties keep first-seen order.
	sort.SliceStable(res.TopicResults, func(i, j int) bool {
		return res.TopicResults[i].Pct > res.TopicResults[j].Pct
	})

	return res
}

func isCorrect(selected, correctIndex *int) bool {
	return selected != nil && correctIndex != nil && *selected == *correctIndex
}

func topicsFor(q models.Question) []string {
	if len(q.Topics) > 0 {
		return q.Topics
	}
	if q.Category != "" {
		return []string{q.Category}
	}
	return []string{defaultTopic}
}

func snapshotOf(q models.Question) models.QuestionSnapshot {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	topics := q.Topics
	if topics == nil {
		topics = []string{}
	}
	return models.QuestionSnapshot{
		ID:           q.ID,
		Text:         q.Text,
		Options:      options,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		Topics:       topics,
	}
}

// percent returns round(100*part/whole), or 0 when whole is 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(100*part) / float64(whole)))
}

// distinctIDs returns the non-empty question ids of answers in first-seen order.
func distinctIDs(answers []models.Answer) []string {
	seen := make(map[string]bool, len(answers))
	ids := make([]string, 0, len(answers))
	for _, a := range answers {
		if a.QuestionID == "" || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		ids = append(ids, a.QuestionID)
	}
	return ids
}
