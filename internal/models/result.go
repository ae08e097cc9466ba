package models

import "time"

type ResultStatus string

const (
	StatusPending      ResultStatus = "pending"
	StatusManualReview ResultStatus = "manual_review"
	StatusAutoPass     ResultStatus = "auto_pass"
	StatusAutoFail     ResultStatus = "auto_fail"
)

var ValidResultStatuses = map[ResultStatus]bool{
	StatusPending:      true,
	StatusManualReview: true,
	StatusAutoPass:     true,
	StatusAutoFail:     true,
}

// ── Submissions ────────────────────────────────────────

type Answer struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex *int   `json:"selectedIndex"`
}

type Submission struct {
	Category       string
	Difficulty     string
	Answers        []Answer
	TimeTaken      string
	SubmissionCode string
	Language       string
}

// ── Results ────────────────────────────────────────────

type TopicResult struct {
	Name    string `json:"name"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Pct     int    `json:"pct"`
}

// QuestionSnapshot is the copy of a question taken when an attempt is graded.
type QuestionSnapshot struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Topics       []string `json:"topics"`
}

type TestResult struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId"`
	Category          string             `json:"category"`
	Difficulty        string             `json:"difficulty"`
	Score             int                `json:"score"`
	Total             int                `json:"total"`
	CorrectAnswers    int                `json:"correctAnswers"`
	WrongAnswers      int                `json:"wrongAnswers"`
	TimeTaken         string             `json:"timeTaken"`
	SubmissionCode    string             `json:"submissionCode"`
	Language          string             `json:"language"`
	Status            ResultStatus       `json:"status"`
	TopicResults      []TopicResult      `json:"topicResults"`
	CorrectAnswersMap map[string]int     `json:"correctAnswersMap"`
	QuestionsSnapshot []QuestionSnapshot `json:"questionsSnapshot"`
	AdminNotes        string             `json:"adminNotes"`
	ReviewedAt        *time.Time         `json:"reviewedAt,omitempty"`
	SubmittedAt       time.Time          `json:"submittedAt"`
}

// ── Reports ────────────────────────────────────────────

type CategoryStat struct {
	Category string `json:"category"`
	AvgScore int    `json:"avgScore"`
	Count    int    `json:"count"`
}

type RecentAttempt struct {
	Category       string       `json:"category"`
	Score          int          `json:"score"`
	Total          int          `json:"total"`
	CorrectAnswers int          `json:"correctAnswers"`
	WrongAnswers   int          `json:"wrongAnswers"`
	SubmittedAt    time.Time    `json:"submittedAt"`
	Status         ResultStatus `json:"status"`
}

type UserReport struct {
	Attempts   int             `json:"attempts"`
	AvgScore   int             `json:"avgScore"`
	Categories []CategoryStat  `json:"categories"`
	Recent     []RecentAttempt `json:"recent"`
	Percentile int             `json:"percentile"`
}

// ── Admin Review ───────────────────────────────────────

type AdminSubmission struct {
	TestResult
	User Submitter `json:"user"`
}

type SubmissionFilter struct {
	Status   string
	Category string
	Limit    int
	Skip     int
}

// SubmissionReview holds the admin-editable fields; nil means unchanged.
type SubmissionReview struct {
	Status         *ResultStatus `json:"status"`
	Score          *int          `json:"score"`
	CorrectAnswers *int          `json:"correctAnswers"`
	WrongAnswers   *int          `json:"wrongAnswers"`
	AdminNotes     *string       `json:"adminNotes"`
}
