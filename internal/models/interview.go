package models

import "time"

type InterviewStatus string

const (
	InterviewPassed  InterviewStatus = "Passed"
	InterviewFailed  InterviewStatus = "Failed"
	InterviewPending InterviewStatus = "Pending"
)

var ValidInterviewStatuses = map[InterviewStatus]bool{
	InterviewPassed:  true,
	InterviewFailed:  true,
	InterviewPending: true,
}

const MaxCompanyLength = 100

type Interview struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Company   string          `json:"company"`
	Role      string          `json:"role"`
	Date      time.Time       `json:"date"`
	Package   string          `json:"package"`
	Status    InterviewStatus `json:"status"`
	Notes     string          `json:"notes"`
	Topics    []string        `json:"topics"`
	CreatedAt time.Time       `json:"createdAt"`
}

// InterviewInput is the create/update payload. Pointer fields left nil are
// not touched on update.
type InterviewInput struct {
	Company *string          `json:"company"`
	Role    *string          `json:"role"`
	Date    *string          `json:"date"`
	Package *string          `json:"package"`
	Status  *InterviewStatus `json:"status"`
	Notes   *string          `json:"notes"`
	Topics  []string         `json:"topics"`
}

type InterviewFilter struct {
	Status   string
	Query    string
	Upcoming *bool
	Page     int
	Limit    int
}

type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

type InterviewList struct {
	Interviews []Interview `json:"interviews"`
	Meta       PageMeta    `json:"meta"`
}
