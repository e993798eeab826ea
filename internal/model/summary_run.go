package model

import "time"

type SummaryRunStatus string

const (
	SummaryRunStatusRunning   SummaryRunStatus = "running"
	SummaryRunStatusSucceeded SummaryRunStatus = "succeeded"
	SummaryRunStatusFailed    SummaryRunStatus = "failed"
)

// SummaryRun is one execution of the daily summary job.
type SummaryRun struct {
	ID         int64            `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Status     SummaryRunStatus `json:"status"`
	Posts      int              `json:"posts"`
	Error      *string          `json:"error,omitempty"`
}
