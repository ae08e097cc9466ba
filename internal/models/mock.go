package models

import "time"

type MockType string

const (
	MockHR        MockType = "HR"
	MockTechnical MockType = "Technical"
)

type MockInterview struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Type          MockType   `json:"type"`
	Questions     []string   `json:"questions"`
	Responses     []string   `json:"responses"`
	Score         int        `json:"score"`
	Feedback      string     `json:"feedback"`
	DraftFeedback string     `json:"draftFeedback,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
}

type AdminMock struct {
	MockInterview
	User Submitter `json:"user"`
}

type MockFilter struct {
	Type  string
	Limit int
	Skip  int
}

type MockReview struct {
	Score    *float64 `json:"score"`
	Feedback *string  `json:"feedback"`
}
